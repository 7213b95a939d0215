package constants

const (
	SubmitRequest    = "submit_request"
	ViewOwnRequests  = "view_own_requests"
	ListRequests     = "list_requests"
	RunLottery       = "run_lottery"
	ViewLottery      = "view_lottery"
	ViewOwnLottery   = "view_own_lottery"
	ViewResidentSlot = "view_resident_slots"
	ReleaseSlot      = "release_slot"
)
