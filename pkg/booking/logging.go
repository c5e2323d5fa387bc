package booking

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing scheduler operation.
type OperationLog struct {
	Operation     string
	RestaurantID  RestaurantID
	ReservationID ReservationID
	TableID       string
	Actor         string
	Status        string
	Error         error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithScheduleConfig overrides the default operating hours, slot interval,
// buffer, and dining duration.
func WithScheduleConfig(config ScheduleConfig) ServiceOption {
	return func(service *Service) {
		service.schedule = config
	}
}

// WithCodeGenerator overrides confirmation code generation (used by tests to
// make codes deterministic).
func WithCodeGenerator(generate func() ConfirmationCode) ServiceOption {
	return func(service *Service) {
		service.codeFn = generate
	}
}

// WithIDGenerator overrides reservation id generation.
func WithIDGenerator(generate func() ReservationID) ServiceOption {
	return func(service *Service) {
		service.idFn = generate
	}
}
