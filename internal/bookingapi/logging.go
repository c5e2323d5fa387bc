package bookingapi

import (
	"context"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/tablebook/pkg/booking"
)

// ZapOperationLogger adapts a zap logger to the scheduler's operation
// callback.
type ZapOperationLogger struct {
	logger *zap.Logger
}

// NewZapOperationLogger wraps a zap logger.
func NewZapOperationLogger(logger *zap.Logger) *ZapOperationLogger {
	return &ZapOperationLogger{logger: logger}
}

// LogOperation writes one structured line per scheduler operation.
func (operationLogger *ZapOperationLogger) LogOperation(_ context.Context, entry booking.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("restaurant_id", entry.RestaurantID.String()),
		zap.String("reservation_id", entry.ReservationID.String()),
		zap.String("actor", entry.Actor),
		zap.String("status", entry.Status),
	}
	if entry.TableID != "" {
		fields = append(fields, zap.String("table_id", entry.TableID))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		operationLogger.logger.Warn("scheduler operation failed", fields...)
		return
	}
	operationLogger.logger.Info("scheduler operation", fields...)
}
