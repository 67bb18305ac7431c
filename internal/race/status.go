package race

// StartStatus is the lifecycle state of one fleet's start sequence.
type StartStatus string

const (
	// StartPending means the fleet is queued and no signal has been made.
	StartPending StartStatus = "pending"
	// StartWarning means the warning signal has been made.
	StartWarning StartStatus = "warning"
	// StartPreparatory means the preparatory signal has been made.
	StartPreparatory StartStatus = "preparatory"
	// StartOneMinute means the one-minute signal has been made.
	StartOneMinute StartStatus = "one_minute"
	// StartStarted means the start signal has been made. Terminal success.
	StartStarted StartStatus = "started"
	// StartGeneralRecall is a transient state recorded while a recalled
	// fleet is re-queued; the entry returns to pending at the back of the
	// schedule.
	StartGeneralRecall StartStatus = "general_recall"
	// StartPostponed is terminal: the start was postponed for the day.
	StartPostponed StartStatus = "postponed"
	// StartAbandoned is terminal: the race was abandoned.
	StartAbandoned StartStatus = "abandoned"
)

// Terminal reports whether no further signal transitions are allowed.
// A started fleet is terminal for the scheduler (downstream components
// take over) but may still be general-recalled.
func (s StartStatus) Terminal() bool {
	switch s {
	case StartStarted, StartPostponed, StartAbandoned:
		return true
	}
	return false
}

// LimitStatus is the lifecycle state of one race's time-limit enforcement.
type LimitStatus string

const (
	// LimitPending means the race has not started yet.
	LimitPending LimitStatus = "pending"
	// LimitRacing means the race has started and no boat has finished.
	LimitRacing LimitStatus = "racing"
	// LimitFirstFinished means at least one boat has finished.
	LimitFirstFinished LimitStatus = "first_finished"
	// LimitWindowExpired means the finishing window has passed with boats
	// still on the course.
	LimitWindowExpired LimitStatus = "window_expired"
	// LimitTimeExpired means the race time limit passed with no finisher.
	LimitTimeExpired LimitStatus = "time_expired"
	// LimitCompleted means auto-disposition has been applied. Terminal.
	LimitCompleted LimitStatus = "completed"
)

// Terminal reports whether the time-limit state machine is done.
func (s LimitStatus) Terminal() bool {
	return s == LimitCompleted
}

// ResultStatus is a boat's finishing status code for one race.
type ResultStatus string

const (
	// StatusFinished means the boat finished and has an elapsed time.
	StatusFinished ResultStatus = "finished"
	// StatusRacing means the boat is still on the course.
	StatusRacing ResultStatus = "racing"
	// StatusDNF means the boat did not finish.
	StatusDNF ResultStatus = "dnf"
	// StatusDNS means the boat did not start.
	StatusDNS ResultStatus = "dns"
	// StatusDNC means the boat did not come to the starting area.
	StatusDNC ResultStatus = "dnc"
	// StatusRetired means the boat retired after finishing or while racing.
	StatusRetired ResultStatus = "retired"
	// StatusDisqualified means the boat was disqualified.
	StatusDisqualified ResultStatus = "dsq"
	// StatusOCS means the boat was on the course side at its start.
	StatusOCS ResultStatus = "ocs"
)

// Finished reports whether the status carries a valid elapsed time.
func (s ResultStatus) Finished() bool {
	return s == StatusFinished
}

// NonFinishing reports whether the status is a terminal non-finishing
// disposition. Auto-disposition skips boats already in one of these.
func (s ResultStatus) NonFinishing() bool {
	switch s {
	case StatusDNF, StatusDNS, StatusDNC, StatusRetired, StatusDisqualified, StatusOCS:
		return true
	}
	return false
}
