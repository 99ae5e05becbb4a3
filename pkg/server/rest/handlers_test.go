package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lintang-b-s/chroute/pkg/contractor"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/chroute/pkg/server/rest/service"
	"github.com/lintang-b-s/chroute/pkg/snap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var coords = []datastructure.Coordinate{
	datastructure.NewCoordinate(-7.7800, 110.3600),
	datastructure.NewCoordinate(-7.7800, 110.3610),
	datastructure.NewCoordinate(-7.7800, 110.3620),
	datastructure.NewCoordinate(-7.7800, 110.3630),
	// komponen lain, tidak terhubung ke 0..3
	datastructure.NewCoordinate(-7.7000, 110.4000),
	datastructure.NewCoordinate(-7.7000, 110.4010),
}

/*
0 -1- 1 -1- 2 -2- 3      4 -1- 5

0-1-2 jalan a, 2-3 jalan b, semua bidirectional
*/
func newTestRouter(t *testing.T) (*chi.Mux, *Metrics) {
	tags := datastructure.NewTagTable()
	jalanA := tags.Add([]datastructure.Tag{datastructure.NewTag("name", "Jalan A"), datastructure.NewTag("highway", "primary")})
	jalanB := tags.Add([]datastructure.Tag{datastructure.NewTag("name", "Jalan B"), datastructure.NewTag("highway", "residential")})

	g := datastructure.NewGraph()
	for _, c := range coords {
		g.AddVertex(c)
	}
	require.NoError(t, g.AddArc(0, 1, datastructure.NewArcData(1, true, true, jalanA)))
	require.NoError(t, g.AddArc(1, 2, datastructure.NewArcData(1, true, true, jalanA)))
	require.NoError(t, g.AddArc(2, 3, datastructure.NewArcData(2, true, true, jalanB)))
	require.NoError(t, g.AddArc(4, 5, datastructure.NewArcData(1, true, true, jalanB)))

	c := contractor.NewContractor(g, contractor.NewLazyOrdering(), contractor.NewDefaultWitnessCalculator())
	require.NoError(t, c.Contract(context.Background()))

	rt, err := routingalgorithm.NewRouteAlgorithm(g)
	require.NoError(t, err)

	snapper := snap.NewNodeSnapper(zap.NewNop())
	snapper.Build(g)

	svc := service.NewNavigationService(g, snapper, rt, tags, zap.NewNop(), 1000)

	m := NewMetrics(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(PromeHttpMiddleware(m))
	NavigatorRouter(r, svc, m)
	return r, m
}

func doPost(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	bb, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(bb))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func srcDst(from, to int) SrcDstRequest {
	return SrcDstRequest{
		SrcLat: coords[from].Lat, SrcLon: coords[from].Lon,
		DstLat: coords[to].Lat, DstLon: coords[to].Lon,
	}
}

func TestShortestPathHandler(t *testing.T) {
	r, m := newTestRouter(t)

	rec := doPost(t, r, "/api/navigations/shortest-path", srcDst(0, 3))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ShortestPathResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.InDelta(t, 4, resp.ETA, 1e-9)
	assert.Equal(t, []int32{0, 1, 2, 3}, resp.Nodes)
	assert.NotEmpty(t, resp.Path)
	assert.InDelta(t, 330, resp.Distance, 5)

	require.Len(t, resp.Steps, 2)
	assert.Equal(t, "Jalan A", resp.Steps[0].Street)
	assert.Equal(t, "primary", resp.Steps[0].Highway)
	assert.InDelta(t, 2, resp.Steps[0].ETA, 1e-9)
	assert.Equal(t, "Jalan B", resp.Steps[1].Street)
	assert.InDelta(t, 2, resp.Steps[1].ETA, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/navigations/shortest-path", http.MethodPost, "200")))
}

func TestShortestPathHandlerNoRoute(t *testing.T) {
	r, m := newTestRouter(t)

	rec := doPost(t, r, "/api/navigations/shortest-path", srcDst(0, 4))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Not found.", resp.StatusText)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routesNotFound))
}

func TestShortestPathHandlerOutsideMap(t *testing.T) {
	r, _ := newTestRouter(t)

	req := srcDst(0, 3)
	req.DstLat, req.DstLon = -6.2, 106.8
	rec := doPost(t, r, "/api/navigations/shortest-path", req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShortestPathHandlerValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	req := srcDst(0, 3)
	req.SrcLat = 100
	rec := doPost(t, r, "/api/navigations/shortest-path", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ErrValidation)

	rec = doPost(t, r, "/api/navigations/shortest-path", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistanceMatrixHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doPost(t, r, "/api/navigations/distance-matrix", DistanceMatrixRequest{
		Sources: []Coord{{Lat: coords[0].Lat, Lon: coords[0].Lon}, {Lat: coords[4].Lat, Lon: coords[4].Lon}},
		Targets: []Coord{{Lat: coords[3].Lat, Lon: coords[3].Lon}, {Lat: coords[5].Lat, Lon: coords[5].Lon}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DistanceMatrixResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Etas, 2)
	require.NotNil(t, resp.Etas[0][0])
	assert.InDelta(t, 4, *resp.Etas[0][0], 1e-9)
	assert.Nil(t, resp.Etas[0][1])
	assert.Nil(t, resp.Etas[1][0])
	require.NotNil(t, resp.Etas[1][1])
	assert.InDelta(t, 1, *resp.Etas[1][1], 1e-9)

	rec = doPost(t, r, "/api/navigations/distance-matrix", DistanceMatrixRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectedHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name     string
		from, to int
		want     bool
	}{
		{name: "same component", from: 0, to: 3, want: true},
		{name: "reversed", from: 3, to: 1, want: true},
		{name: "different component", from: 0, to: 5, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPost(t, r, "/api/navigations/connected", srcDst(tt.from, tt.to))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp ConnectedResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Connected)
		})
	}
}
