package services

// Service errors. These are expected, user-facing rejections: the caller gets
// them synchronously and no retry is implied.
var (
	ErrPollNotFound          = &ServiceError{Message: "poll not found"}
	ErrPollNotActive         = &ServiceError{Message: "poll is not accepting votes"}
	ErrAlreadyVoted          = &ServiceError{Message: "you have already voted in this poll"}
	ErrInvalidSelectionCount = &ServiceError{Message: "invalid number of selections"}
	ErrUnknownOption         = &ServiceError{Message: "selection is not an option of this poll"}
	ErrResultsNotVisible     = &ServiceError{Message: "results are not visible yet"}
	ErrVoterRequired         = &ServiceError{Message: "voter id is required"}
	ErrBallotNotFound        = &ServiceError{Message: "no ballot recorded for this voter"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
