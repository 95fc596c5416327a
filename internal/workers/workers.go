package workers

type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers so the application can start them
// with a single Run call.
func NewWorkers(workerList ...Worker) *Workers {
	return &Workers{workers: workerList}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
