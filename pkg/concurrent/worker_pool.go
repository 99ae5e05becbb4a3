package concurrent

import (
	"runtime"
	"sync"
)

/*
WorkerPool. fixed number of goroutines reading jobs from a buffered queue.
results buffer holds numJobs results, so Wait never blocks on an unread result.

	wp := NewWorkerPool[T, G](workers, len(items))
	wp.Start(fn)
	for i, item := range items { wp.AddJob(i, item) }
	wp.Close()
	wp.Wait()
	for res := range wp.CollectResults() { ... }
*/
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan JobResult[G]
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, numJobs int) *WorkerPool[T, G] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], numJobs),
		results:    make(chan JobResult[G], numJobs),
	}
}

func (wp *WorkerPool[T, G]) Start(fn JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *WorkerPool[T, G]) worker(fn JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- JobResult[G]{ID: job.ID, Result: fn(job.JobItem)}
	}
}

func (wp *WorkerPool[T, G]) AddJob(id int, item T) {
	wp.jobQueue <- Job[T]{ID: id, JobItem: item}
}

// Close signals that no more jobs will be added.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

// Wait blocks until every job has been processed, then closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan JobResult[G] {
	return wp.results
}

// ParallelMap runs fn over items on numWorkers goroutines and returns the results in input order.
func ParallelMap[T any, G any](numWorkers int, items []T, fn JobFunc[T, G]) []G {
	out := make([]G, len(items))
	if len(items) == 0 {
		return out
	}
	wp := NewWorkerPool[T, G](numWorkers, len(items))
	wp.Start(fn)
	for i, item := range items {
		wp.AddJob(i, item)
	}
	wp.Close()
	wp.Wait()
	for res := range wp.CollectResults() {
		out[res.ID] = res.Result
	}
	return out
}
