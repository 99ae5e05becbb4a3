package rest

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/server"
	"github.com/lintang-b-s/chroute/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	ShortestPathETA(ctx context.Context, srcLat, srcLon float64,
		dstLat float64, dstLon float64) (service.ShortestPathResult, error)
	DistanceMatrix(ctx context.Context, sources, targets []datastructure.Coordinate) ([][]float64, error)
	AreConnected(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (bool, error)
}

type NavigationHandler struct {
	svc      NavigationService
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, m *Metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &NavigationHandler{svc: svc, metrics: m, validate: validate, trans: trans}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigations", func(r chi.Router) {
			r.Post("/shortest-path", handler.shortestPathETA)
			r.Post("/distance-matrix", handler.distanceMatrix)
			r.Post("/connected", handler.areConnected)
		})
	})
}

// SrcDstRequest model info
//
//	@Description	request body dengan lokasi asal & tujuan
type SrcDstRequest struct {
	SrcLat float64 `json:"src_lat" validate:"required,lt=90,gt=-90"`
	SrcLon float64 `json:"src_lon" validate:"required,lt=180,gt=-180"`
	DstLat float64 `json:"dst_lat" validate:"required,lt=90,gt=-90"`
	DstLon float64 `json:"dst_lon" validate:"required,lt=180,gt=-180"`
}

func (s *SrcDstRequest) Bind(r *http.Request) error {
	if s.SrcLat == 0 && s.SrcLon == 0 && s.DstLat == 0 && s.DstLon == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// Coord model info
//
//	@Description	model untuk koordinat
type Coord struct {
	Lat float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon float64 `json:"lon" validate:"required,lt=180,gt=-180"`
}

// DistanceMatrixRequest model info
//
//	@Description	request body untuk many to many eta matrix
type DistanceMatrixRequest struct {
	Sources []Coord `json:"sources" validate:"required,min=1,max=100,dive"`
	Targets []Coord `json:"targets" validate:"required,min=1,max=100,dive"`
}

func (s *DistanceMatrixRequest) Bind(r *http.Request) error {
	if len(s.Sources) == 0 || len(s.Targets) == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// ShortestPathResponse model info
//
//	@Description	response body untuk shortest path query
type ShortestPathResponse struct {
	Path     string              `json:"path"`
	ETA      float64             `json:"eta"`
	Distance float64             `json:"distance"`
	Found    bool                `json:"found"`
	Nodes    []int32             `json:"nodes"`
	Steps    []service.RouteStep `json:"steps"`
}

func NewShortestPathResponse(res service.ShortestPathResult) *ShortestPathResponse {
	return &ShortestPathResponse{
		Path:     res.Path,
		ETA:      res.ETA,
		Distance: res.DistanceMeter,
		Found:    true,
		Nodes:    res.Nodes,
		Steps:    res.Steps,
	}
}

// DistanceMatrixResponse model info
//
//	@Description	eta dalam menit, null kalau tidak ada rute
type DistanceMatrixResponse struct {
	Etas [][]*float64 `json:"etas"`
}

func NewDistanceMatrixResponse(matrix [][]float64) *DistanceMatrixResponse {
	etas := make([][]*float64, len(matrix))
	for i, row := range matrix {
		etas[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsInf(row[j], 1) {
				eta := row[j]
				etas[i][j] = &eta
			}
		}
	}
	return &DistanceMatrixResponse{Etas: etas}
}

// ConnectedResponse model info
//
//	@Description	response body untuk query apakah ada rute dari asal ke tujuan
type ConnectedResponse struct {
	Connected bool `json:"connected"`
}

func (h *NavigationHandler) bindAndValidate(w http.ResponseWriter, r *http.Request, data render.Binder) bool {
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	if err := h.validate.Struct(data); err != nil {
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrValidation(err, vv))
		return false
	}
	return true
}

// shortestPathETA
//
//	@Summary		shortest path query pakai contraction hierarchies + bidirectional dijkstra
//	@Description	shortest path query pakai contraction hierarchies + bidirectional dijkstra. eta dalam menit, distance dalam meter
//	@Tags			navigations
//	@Param			body	body	SrcDstRequest	true	"request body query shortest path antara 2 tempat"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/shortest-path [post]
//	@Success		200	{object}	ShortestPathResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) shortestPathETA(w http.ResponseWriter, r *http.Request) {
	data := &SrcDstRequest{}
	if !h.bindAndValidate(w, r, data) {
		return
	}

	res, err := h.svc.ShortestPathETA(r.Context(), data.SrcLat, data.SrcLon, data.DstLat, data.DstLon)
	if err != nil {
		var appErr *server.Error
		if h.metrics != nil && errors.As(err, &appErr) && appErr.Code() == server.ErrNotFound {
			h.metrics.routesNotFound.Inc()
		}
		render.Render(w, r, ErrorResponse(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewShortestPathResponse(res))
}

// distanceMatrix
//
//	@Summary		many to many eta matrix
//	@Tags			navigations
//	@Param			body	body	DistanceMatrixRequest	true	"request body many to many query"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/distance-matrix [post]
//	@Success		200	{object}	DistanceMatrixResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) distanceMatrix(w http.ResponseWriter, r *http.Request) {
	data := &DistanceMatrixRequest{}
	if !h.bindAndValidate(w, r, data) {
		return
	}

	sources := make([]datastructure.Coordinate, 0, len(data.Sources))
	for _, c := range data.Sources {
		sources = append(sources, datastructure.NewCoordinate(c.Lat, c.Lon))
	}
	targets := make([]datastructure.Coordinate, 0, len(data.Targets))
	for _, c := range data.Targets {
		targets = append(targets, datastructure.NewCoordinate(c.Lat, c.Lon))
	}

	matrix, err := h.svc.DistanceMatrix(r.Context(), sources, targets)
	if err != nil {
		render.Render(w, r, ErrorResponse(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewDistanceMatrixResponse(matrix))
}

// areConnected
//
//	@Summary		cek apakah ada rute dari lokasi asal ke lokasi tujuan
//	@Tags			navigations
//	@Param			body	body	SrcDstRequest	true	"request body lokasi asal & tujuan"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/connected [post]
//	@Success		200	{object}	ConnectedResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) areConnected(w http.ResponseWriter, r *http.Request) {
	data := &SrcDstRequest{}
	if !h.bindAndValidate(w, r, data) {
		return
	}

	connected, err := h.svc.AreConnected(r.Context(), data.SrcLat, data.SrcLon, data.DstLat, data.DstLon)
	if err != nil {
		render.Render(w, r, ErrorResponse(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &ConnectedResponse{Connected: connected})
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrResponse model info
//
//	@Description	model untuk error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		translatedErr := errors.New(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

// ErrorResponse maps a service error to its http status. only the client safe message of server.Error is exposed.
func ErrorResponse(err error) render.Renderer {
	var appErr *server.Error
	if !errors.As(err, &appErr) {
		return ErrInternalServerErrorRend(errors.New("internal server error"))
	}

	resp := &ErrResponse{
		Err:       err,
		AppCode:   int64(appErr.Code()),
		ErrorText: appErr.Message(),
	}
	switch appErr.Code() {
	case server.ErrNotFound:
		resp.HTTPStatusCode = http.StatusNotFound
		resp.StatusText = "Not found."
	case server.ErrBadParamInput:
		resp.HTTPStatusCode = http.StatusBadRequest
		resp.StatusText = "Invalid request."
	case server.ErrConflict:
		resp.HTTPStatusCode = http.StatusConflict
		resp.StatusText = "Conflict."
	case server.ErrTimeout:
		resp.HTTPStatusCode = http.StatusGatewayTimeout
		resp.StatusText = "Request timeout."
	default:
		resp.HTTPStatusCode = http.StatusInternalServerError
		resp.StatusText = "Internal server error."
		resp.ErrorText = "internal server error"
	}
	return resp
}
