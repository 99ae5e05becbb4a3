package concurrent

type Job[T any] struct {
	ID      int
	JobItem T
}

type JobFunc[T any, G any] func(job T) G

type JobResult[G any] struct {
	ID     int
	Result G
}

// ContractNodeJob asks a worker for the shortcuts of one vertex of an independent set.
type ContractNodeJob struct {
	NodeID   int32
	Excluded map[int32]struct{}
}

func NewContractNodeJob(nodeID int32, excluded map[int32]struct{}) ContractNodeJob {
	return ContractNodeJob{
		NodeID:   nodeID,
		Excluded: excluded,
	}
}

// BucketSearchJob asks a worker for the backward search space of one many-to-many target.
type BucketSearchJob struct {
	TargetIdx int
	NodeID    int32
}

func NewBucketSearchJob(targetIdx int, nodeID int32) BucketSearchJob {
	return BucketSearchJob{
		TargetIdx: targetIdx,
		NodeID:    nodeID,
	}
}
