package loan

// FailScheduleInsert is a test helper that makes the in-memory repository
// commit the loan row but fail the schedule insert, reproducing the
// partial-failure state an operator would need to repair.
func FailScheduleInsert(r Repository, fail bool) {
	if mem, ok := r.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.failSchedule = fail
	}
}
