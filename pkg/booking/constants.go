package booking

const (
	operationCreate       = "create"
	operationUpdate       = "update"
	operationChangeStatus = "change_status"
	operationReschedule   = "reschedule"
	operationChangeTable  = "change_table"
	operationRemove       = "remove"
	operationMarkReminded = "mark_reminded"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	confirmationCodeLength   = 8
	confirmationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)
