package bookingapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/tablebook/pkg/booking"
)

// Run boots the HTTP surface over a constructed scheduler service.
func Run(ctx context.Context, cfg Config, service *booking.Service, logger *zap.Logger) error {
	sessionValidator, err := sessionvalidator.New(sessionvalidator.Config{
		SigningKey: []byte(cfg.SessionSigningKey),
		Issuer:     cfg.SessionIssuer,
		CookieName: cfg.SessionCookieName,
	})
	if err != nil {
		return fmt.Errorf("session validator: %w", err)
	}

	router := NewRouter(cfg, service, logger, sessionValidator)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bookingapi listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// NewRouter assembles the gin engine. Guest-facing routes live under
// /api/public and need no session; staff routes sit behind the session
// validator.
func NewRouter(cfg Config, service *booking.Service, logger *zap.Logger, validator *sessionvalidator.Validator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := &httpHandler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}

	public := router.Group("/api/public/restaurants/:restaurant_id")
	public.GET("/availability", handler.handleAvailability)
	public.GET("/reservations/code/:code", handler.handleLookupByCode)
	public.POST("/reservations", handler.handleGuestCreate)

	staff := router.Group("/api/restaurants/:restaurant_id")
	staff.Use(validator.GinMiddleware("auth_claims"))
	staff.GET("/reservations", handler.handleList)
	staff.POST("/reservations", handler.handleStaffCreate)
	staff.GET("/reservations/:reservation_id", handler.handleGet)
	staff.PATCH("/reservations/:reservation_id", handler.handleUpdate)
	staff.DELETE("/reservations/:reservation_id", handler.handleRemove)
	staff.POST("/reservations/:reservation_id/status", handler.handleChangeStatus)
	staff.POST("/reservations/:reservation_id/reschedule", handler.handleReschedule)
	staff.POST("/reservations/:reservation_id/table", handler.handleChangeTable)
	staff.POST("/reservations/:reservation_id/remind", handler.handleMarkReminded)
	staff.GET("/reservations/:reservation_id/history", handler.handleHistory)
	staff.GET("/calendar", handler.handleCalendar)
	staff.GET("/schedule", handler.handleDaySchedule)

	return router
}

type httpHandler struct {
	logger  *zap.Logger
	service *booking.Service
	cfg     Config
}

type createReservationPayload struct {
	GuestName       string `json:"guest_name" binding:"required"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone"`
	GuestID         string `json:"guest_id"`
	PartySize       int    `json:"party_size" binding:"required"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	TableID         string `json:"table_id"`
	Source          string `json:"source"`
	Note            string `json:"note"`
}

type updateReservationPayload struct {
	GuestName       *string `json:"guest_name"`
	GuestEmail      *string `json:"guest_email"`
	GuestPhone      *string `json:"guest_phone"`
	PartySize       *int    `json:"party_size"`
	Date            *string `json:"date"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes"`
}

type changeStatusPayload struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type reschedulePayload struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	TableID   string `json:"table_id"`
}

type changeTablePayload struct {
	TableID string `json:"table_id" binding:"required"`
}

type reservationPayload struct {
	ReservationID    string `json:"reservation_id"`
	GuestName        string `json:"guest_name"`
	GuestEmail       string `json:"guest_email,omitempty"`
	GuestPhone       string `json:"guest_phone,omitempty"`
	PartySize        int    `json:"party_size"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	TableID          string `json:"table_id,omitempty"`
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmation_code"`
	Source           string `json:"source"`
	ConfirmedUnixUTC int64  `json:"confirmed_unix_utc,omitempty"`
	SeatedUnixUTC    int64  `json:"seated_unix_utc,omitempty"`
	CancelReason     string `json:"cancel_reason,omitempty"`
	CreatedUnixUTC   int64  `json:"created_unix_utc"`
	UpdatedUnixUTC   int64  `json:"updated_unix_utc"`
}

type timeSlotPayload struct {
	Label           string   `json:"label"`
	Available       bool     `json:"available"`
	AvailableTables int      `json:"available_tables"`
	TableIDs        []string `json:"table_ids"`
}

type historyPayload struct {
	Action          string `json:"action"`
	PreviousValue   string `json:"previous_value,omitempty"`
	NewValue        string `json:"new_value,omitempty"`
	Actor           string `json:"actor"`
	Note            string `json:"note,omitempty"`
	RecordedUnixUTC int64  `json:"recorded_unix_utc"`
}

func (handler *httpHandler) handleAvailability(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	date, err := booking.ParseCalendarDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_date", "date must be YYYY-MM-DD"))
		return
	}
	var partySizeRaw int
	if _, err := fmt.Sscanf(ctx.Query("party_size"), "%d", &partySizeRaw); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_party_size", "party_size must be an integer"))
		return
	}
	partySize, err := booking.NewPartySize(partySizeRaw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_party_size", err.Error()))
		return
	}
	var duration time.Duration
	if raw := ctx.Query("duration_minutes"); raw != "" {
		var minutes int
		if _, err := fmt.Sscanf(raw, "%d", &minutes); err != nil || minutes < 0 {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_duration", "duration_minutes must be a positive integer"))
			return
		}
		duration = time.Duration(minutes) * time.Minute
	}

	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	slots, err := handler.service.CheckAvailability(requestCtx, restaurantID, date, partySize, duration)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]timeSlotPayload, 0, len(slots))
	for _, slot := range slots {
		tableIDs := make([]string, 0, len(slot.TableIDs))
		for _, tableID := range slot.TableIDs {
			tableIDs = append(tableIDs, tableID.String())
		}
		payload = append(payload, timeSlotPayload{
			Label:           slot.Label,
			Available:       slot.Available,
			AvailableTables: slot.AvailableTables,
			TableIDs:        tableIDs,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"date": date.String(), "slots": payload})
}

func (handler *httpHandler) handleLookupByCode(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	code, err := booking.NewConfirmationCode(ctx.Param("code"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_code", err.Error()))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.GetReservationByCode(requestCtx, restaurantID, code)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleGuestCreate(ctx *gin.Context) {
	handler.create(ctx, booking.Actor{})
}

func (handler *httpHandler) handleStaffCreate(ctx *gin.Context) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	handler.create(ctx, booking.Actor{ID: claims.GetUserID(), Staff: true})
}

func (handler *httpHandler) create(ctx *gin.Context, actor booking.Actor) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	var payload createReservationPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	request, err := toCreateRequest(payload)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", err.Error()))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.Create(requestCtx, restaurantID, request, actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleList(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	filter, err := toReservationFilter(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_filter", err.Error()))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservations, err := handler.service.ListReservations(requestCtx, restaurantID, filter)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]reservationPayload, 0, len(reservations))
	for _, reservation := range reservations {
		payload = append(payload, toReservationPayload(reservation))
	}
	ctx.JSON(http.StatusOK, gin.H{"reservations": payload})
}

func (handler *httpHandler) handleGet(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.GetReservation(requestCtx, restaurantID, reservationID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleUpdate(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	actor, ok := handler.staffActor(ctx)
	if !ok {
		return
	}
	var payload updateReservationPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	patch, err := toReservationPatch(payload)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", err.Error()))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.Update(requestCtx, restaurantID, reservationID, patch, actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleChangeStatus(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	actor, ok := handler.staffActor(ctx)
	if !ok {
		return
	}
	var payload changeStatusPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	status, err := booking.ParseReservationStatus(payload.Status)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_status", err.Error()))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.ChangeStatus(requestCtx, restaurantID, reservationID, status, payload.Reason, actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleReschedule(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	actor, ok := handler.staffActor(ctx)
	if !ok {
		return
	}
	var payload reschedulePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	date, err := booking.ParseCalendarDate(payload.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_date", err.Error()))
		return
	}
	startTime, err := booking.ParseClockTime(payload.StartTime)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_start_time", err.Error()))
		return
	}
	var tableID *booking.TableID
	if payload.TableID != "" {
		parsed, err := booking.NewTableID(payload.TableID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_table_id", err.Error()))
			return
		}
		tableID = &parsed
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.Reschedule(requestCtx, restaurantID, reservationID, date, startTime, tableID, actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleChangeTable(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	actor, ok := handler.staffActor(ctx)
	if !ok {
		return
	}
	var payload changeTablePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	tableID, err := booking.NewTableID(payload.TableID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_table_id", err.Error()))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.ChangeTable(requestCtx, restaurantID, reservationID, tableID, actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleMarkReminded(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	actor, ok := handler.staffActor(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	reservation, err := handler.service.MarkReminded(requestCtx, restaurantID, reservationID, actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": toReservationPayload(reservation)})
}

func (handler *httpHandler) handleRemove(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	actor, ok := handler.staffActor(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	if err := handler.service.Remove(requestCtx, restaurantID, reservationID, actor); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (handler *httpHandler) handleHistory(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	records, err := handler.service.GetHistory(requestCtx, restaurantID, reservationID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]historyPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, historyPayload{
			Action:          record.Action.String(),
			PreviousValue:   record.PreviousValue,
			NewValue:        record.NewValue,
			Actor:           record.Actor,
			Note:            record.Note,
			RecordedUnixUTC: record.RecordedUnixUTC,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"history": payload})
}

func (handler *httpHandler) handleCalendar(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	startDate, err := booking.ParseCalendarDate(ctx.Query("start"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_start", "start must be YYYY-MM-DD"))
		return
	}
	endDate, err := booking.ParseCalendarDate(ctx.Query("end"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_end", "end must be YYYY-MM-DD"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	summaries, err := handler.service.GetCalendarOverview(requestCtx, restaurantID, startDate, endDate)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, gin.H{
			"date":         summary.Date.String(),
			"reservations": summary.Reservations,
			"guests":       summary.Guests,
			"confirmed":    summary.Confirmed,
			"pending":      summary.Pending,
			"waitlist":     summary.Waitlist,
			"peak":         summary.Peak,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"days": payload})
}

func (handler *httpHandler) handleDaySchedule(ctx *gin.Context) {
	restaurantID, ok := handler.restaurantID(ctx)
	if !ok {
		return
	}
	date, err := booking.ParseCalendarDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_date", "date must be YYYY-MM-DD"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
	defer cancel()
	schedule, err := handler.service.GetDaySchedule(requestCtx, restaurantID, date)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}

	tables := make([]gin.H, 0, len(schedule.Tables))
	for _, tableSchedule := range schedule.Tables {
		reservations := make([]reservationPayload, 0, len(tableSchedule.Reservations))
		for _, reservation := range tableSchedule.Reservations {
			reservations = append(reservations, toReservationPayload(reservation))
		}
		tables = append(tables, gin.H{
			"table_id":     tableSchedule.Table.TableID.String(),
			"name":         tableSchedule.Table.Name,
			"section":      tableSchedule.Table.Section,
			"min_capacity": tableSchedule.Table.MinCapacity,
			"max_capacity": tableSchedule.Table.MaxCapacity,
			"active":       tableSchedule.Table.Active,
			"reservations": reservations,
		})
	}
	unassigned := make([]reservationPayload, 0, len(schedule.Unassigned))
	for _, reservation := range schedule.Unassigned {
		unassigned = append(unassigned, toReservationPayload(reservation))
	}
	hours := make([]gin.H, 0, len(schedule.Hours))
	for _, hour := range schedule.Hours {
		hours = append(hours, gin.H{
			"hour":         hour.Hour,
			"label":        hour.Label,
			"reservations": hour.Reservations,
			"guests":       hour.Guests,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{
		"date":       schedule.Date.String(),
		"tables":     tables,
		"unassigned": unassigned,
		"hours":      hours,
	})
}

func (handler *httpHandler) restaurantID(ctx *gin.Context) (booking.RestaurantID, bool) {
	restaurantID, err := booking.NewRestaurantID(ctx.Param("restaurant_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_restaurant_id", err.Error()))
		return booking.RestaurantID{}, false
	}
	return restaurantID, true
}

func (handler *httpHandler) reservationID(ctx *gin.Context) (booking.ReservationID, bool) {
	reservationID, err := booking.NewReservationID(ctx.Param("reservation_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_reservation_id", err.Error()))
		return booking.ReservationID{}, false
	}
	return reservationID, true
}

func (handler *httpHandler) staffActor(ctx *gin.Context) (booking.Actor, bool) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return booking.Actor{}, false
	}
	return booking.Actor{ID: claims.GetUserID(), Staff: true}, true
}

// respondError maps the scheduler's error taxonomy onto HTTP status codes.
func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		ctx.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, booking.ErrConflict):
		ctx.JSON(http.StatusConflict, errorResponse("conflict", err.Error()))
	case errors.Is(err, booking.ErrInvalidTransition):
		ctx.JSON(http.StatusUnprocessableEntity, errorResponse("invalid_transition", err.Error()))
	case errors.Is(err, booking.ErrBadRequest):
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
	default:
		handler.logger.Error("scheduler request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "internal error"))
	}
}

func toCreateRequest(payload createReservationPayload) (booking.CreateReservationRequest, error) {
	partySize, err := booking.NewPartySize(payload.PartySize)
	if err != nil {
		return booking.CreateReservationRequest{}, err
	}
	date, err := booking.ParseCalendarDate(payload.Date)
	if err != nil {
		return booking.CreateReservationRequest{}, err
	}
	startTime, err := booking.ParseClockTime(payload.StartTime)
	if err != nil {
		return booking.CreateReservationRequest{}, err
	}
	request := booking.CreateReservationRequest{
		GuestName:  payload.GuestName,
		GuestEmail: payload.GuestEmail,
		GuestPhone: payload.GuestPhone,
		PartySize:  partySize,
		Date:       date,
		StartTime:  startTime,
		Duration:   time.Duration(payload.DurationMinutes) * time.Minute,
		Note:       payload.Note,
	}
	if payload.GuestID != "" {
		guestID, err := booking.NewGuestID(payload.GuestID)
		if err != nil {
			return booking.CreateReservationRequest{}, err
		}
		request.GuestID = &guestID
	}
	if payload.TableID != "" {
		tableID, err := booking.NewTableID(payload.TableID)
		if err != nil {
			return booking.CreateReservationRequest{}, err
		}
		request.TableID = &tableID
	}
	if payload.Source != "" {
		source, err := booking.ParseReservationSource(payload.Source)
		if err != nil {
			return booking.CreateReservationRequest{}, err
		}
		request.Source = source
	}
	return request, nil
}

func toReservationPatch(payload updateReservationPayload) (booking.ReservationPatch, error) {
	patch := booking.ReservationPatch{
		GuestName:  payload.GuestName,
		GuestEmail: payload.GuestEmail,
		GuestPhone: payload.GuestPhone,
	}
	if payload.PartySize != nil {
		partySize, err := booking.NewPartySize(*payload.PartySize)
		if err != nil {
			return booking.ReservationPatch{}, err
		}
		patch.PartySize = &partySize
	}
	if payload.Date != nil {
		date, err := booking.ParseCalendarDate(*payload.Date)
		if err != nil {
			return booking.ReservationPatch{}, err
		}
		patch.Date = &date
	}
	if payload.StartTime != nil {
		startTime, err := booking.ParseClockTime(*payload.StartTime)
		if err != nil {
			return booking.ReservationPatch{}, err
		}
		patch.StartTime = &startTime
	}
	if payload.DurationMinutes != nil {
		duration := time.Duration(*payload.DurationMinutes) * time.Minute
		patch.Duration = &duration
	}
	return patch, nil
}

func toReservationFilter(ctx *gin.Context) (booking.ReservationFilter, error) {
	var filter booking.ReservationFilter
	if raw := ctx.Query("date"); raw != "" {
		date, err := booking.ParseCalendarDate(raw)
		if err != nil {
			return booking.ReservationFilter{}, err
		}
		filter.Date = &date
	}
	if raw := ctx.Query("date_from"); raw != "" {
		date, err := booking.ParseCalendarDate(raw)
		if err != nil {
			return booking.ReservationFilter{}, err
		}
		filter.DateFrom = &date
	}
	if raw := ctx.Query("date_to"); raw != "" {
		date, err := booking.ParseCalendarDate(raw)
		if err != nil {
			return booking.ReservationFilter{}, err
		}
		filter.DateTo = &date
	}
	if raw := ctx.Query("table_id"); raw != "" {
		tableID, err := booking.NewTableID(raw)
		if err != nil {
			return booking.ReservationFilter{}, err
		}
		filter.TableID = &tableID
	}
	if raw := ctx.Query("status"); raw != "" {
		status, err := booking.ParseReservationStatus(raw)
		if err != nil {
			return booking.ReservationFilter{}, err
		}
		filter.Statuses = []booking.ReservationStatus{status}
	}
	return filter, nil
}

func toReservationPayload(reservation booking.Reservation) reservationPayload {
	payload := reservationPayload{
		ReservationID:    reservation.ReservationID.String(),
		GuestName:        reservation.GuestName,
		GuestEmail:       reservation.GuestEmail,
		GuestPhone:       reservation.GuestPhone,
		PartySize:        reservation.PartySize.Int(),
		Date:             reservation.Date.String(),
		StartTime:        reservation.Window.Start().String(),
		EndTime:          reservation.Window.End().String(),
		Status:           reservation.Status.String(),
		ConfirmationCode: reservation.ConfirmationCode.String(),
		Source:           reservation.Source.String(),
		ConfirmedUnixUTC: reservation.ConfirmedUnixUTC,
		SeatedUnixUTC:    reservation.SeatedUnixUTC,
		CancelReason:     reservation.CancelReason,
		CreatedUnixUTC:   reservation.CreatedUnixUTC,
		UpdatedUnixUTC:   reservation.UpdatedUnixUTC,
	}
	if reservation.TableID != nil {
		payload.TableID = reservation.TableID.String()
	}
	return payload
}

func getClaims(ctx *gin.Context) *sessionvalidator.Claims {
	claimsValue, ok := ctx.Get("auth_claims")
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*sessionvalidator.Claims)
	return claims
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
