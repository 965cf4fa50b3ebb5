package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/media"
	"github.com/moptabi/moptabi-backend/internal/planner"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const msgPlanInvalid = "入力内容に誤りがあります"

var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrStorageDisabled  = errors.New("image storage is not configured")
	ErrImageTooLarge    = errors.New("image exceeds the maximum size")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

type TripConfig struct {
	ImageBucket       string
	ImageMaxBytes     int64
	ImageMaxDimension int
	Logger            *slog.Logger
}

type TripService struct {
	trips     ports.TripRepository
	plans     ports.PlanRepository
	spots     ports.SpotRepository
	tx        ports.TxManager
	storage   ports.ObjectStorage
	processor media.Processor
	cfg       TripConfig
	logger    *slog.Logger
}

func NewTripService(
	trips ports.TripRepository,
	plans ports.PlanRepository,
	spots ports.SpotRepository,
	tx ports.TxManager,
	storage ports.ObjectStorage,
	processor media.Processor,
	cfg TripConfig,
) *TripService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TripService{
		trips:     trips,
		plans:     plans,
		spots:     spots,
		tx:        tx,
		storage:   storage,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *TripService) List(ctx context.Context, userID string) ([]domain.TripSummary, error) {
	trips, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []domain.TripSummary{}
	}
	return trips, nil
}

func (s *TripService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TripDetail, error) {
	trip, err := s.trips.FindByID(ctx, userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	infos, err := s.trips.ListInfos(ctx, id)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := loadPlanDetails(ctx, s.plans, s.spots, plans)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []domain.TripInfo{}
	}
	return &domain.TripDetail{Trip: *trip, Infos: infos, Plans: details}, nil
}

// Create validates the planner state and writes the whole trip in one
// transaction.
func (s *TripService) Create(ctx context.Context, userID string, state planner.State) (*domain.TripDetail, error) {
	b, err := validateState(state)
	if err != nil {
		return nil, err
	}
	graph, err := buildTripGraph(userID, b)
	if err != nil {
		return nil, err
	}

	var tripID uuid.UUID
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		count, err := s.trips.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count >= domain.MaxPlans {
			return ErrPlanLimitExceeded
		}
		if err := s.upsertSpots(ctx, graph.Spots); err != nil {
			return err
		}
		created, err := s.trips.Create(ctx, &graph.Trip)
		if err != nil {
			return err
		}
		tripID = created.ID
		return s.writeChildren(ctx, tripID, graph)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("trip created", slog.String("user_id", userID), slog.String("trip_id", tripID.String()), slog.Int("days", len(graph.Days)))
	return s.Get(ctx, userID, tripID)
}

// Update replaces the trip's infos, plans, plan spots and transports with
// the given state.
func (s *TripService) Update(ctx context.Context, userID string, id uuid.UUID, state planner.State) (*domain.TripDetail, error) {
	b, err := validateState(state)
	if err != nil {
		return nil, err
	}
	graph, err := buildTripGraph(userID, b)
	if err != nil {
		return nil, err
	}
	graph.Trip.ID = id

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.trips.Update(ctx, &graph.Trip); err != nil {
			if isNotFound(err) {
				return ErrTripNotFound
			}
			return err
		}
		if err := s.upsertSpots(ctx, graph.Spots); err != nil {
			return err
		}
		return s.writeChildren(ctx, id, graph)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func (s *TripService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, userID, id); err != nil {
		if isNotFound(err) {
			return ErrTripNotFound
		}
		return err
	}
	return nil
}

// UploadImage downscales the cover, stores it and points the trip at it.
func (s *TripService) UploadImage(ctx context.Context, userID string, id uuid.UUID, upload media.Upload) (*domain.Trip, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if s.cfg.ImageMaxBytes > 0 && upload.Size > s.cfg.ImageMaxBytes {
		return nil, ErrImageTooLarge
	}
	if _, err := s.trips.FindByID(ctx, userID, id); err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	prepared, err := prepareImageForUpload(ctx, s.processor, upload, s.cfg.ImageMaxDimension)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			return nil, ErrUnsupportedImage
		}
		return nil, err
	}

	objectName := path.Join("trips", id.String(), fmt.Sprintf("%d%s", time.Now().UnixNano(), prepared.Extension))
	url, err := s.storage.Upload(ctx, s.cfg.ImageBucket, objectName, prepared.ContentType, prepared.Reader, prepared.Size)
	if err != nil {
		return nil, fmt.Errorf("upload trip image: %w", err)
	}

	trip, err := s.trips.SetImage(ctx, userID, id, url)
	if err != nil {
		if rmErr := s.storage.Remove(ctx, s.cfg.ImageBucket, objectName); rmErr != nil {
			s.logger.Warn("remove orphaned trip image", slog.String("object", objectName), slog.Any("error", rmErr))
		}
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}

func (s *TripService) upsertSpots(ctx context.Context, spots []domain.SpotDetail) error {
	for _, spot := range spots {
		if err := s.spots.Upsert(ctx, spot); err != nil {
			return fmt.Errorf("upsert spot %s: %w", spot.ID, err)
		}
	}
	return nil
}

func (s *TripService) writeChildren(ctx context.Context, tripID uuid.UUID, graph *domain.TripGraph) error {
	for i := range graph.Infos {
		graph.Infos[i].TripID = tripID
	}
	for i := range graph.Days {
		graph.Days[i].Plan.TripID = tripID
	}
	if err := s.trips.ReplaceInfos(ctx, tripID, graph.Infos); err != nil {
		return err
	}
	return s.plans.ReplaceForTrip(ctx, tripID, graph.Days)
}

func validateState(state planner.State) (*planner.Builder, error) {
	b := planner.FromState(state)
	if b.CheckValidation() {
		return nil, newValidationError(msgPlanInvalid, b.Errors())
	}
	return b, nil
}

type chainNode struct {
	role       domain.TransportNode
	planSpotID *uuid.UUID
	transport  *planner.Transport
}

// buildTripGraph turns a validated builder into rows. Each spot's transport
// is the leg to the next node of the day: departure first, then the spots in
// order, then the destination.
func buildTripGraph(userID string, b *planner.Builder) (*domain.TripGraph, error) {
	info := b.TripInfo()
	start, err := info.StartDate.Time()
	if err != nil {
		return nil, err
	}
	end, err := info.EndDate.Time()
	if err != nil {
		return nil, err
	}

	graph := &domain.TripGraph{
		Trip: domain.Trip{
			UserID:    userID,
			Title:     info.Title,
			StartDate: start,
			EndDate:   end,
		},
	}

	dayInfos := make(map[domain.DateKey]planner.DayInfo, len(info.Days))
	for _, d := range info.Days {
		dayInfos[d.Date] = d
	}
	for _, key := range domain.DateRange(start, end) {
		date, _ := key.Time()
		ti := domain.TripInfo{ID: uuid.New(), Date: date}
		if d, ok := dayInfos[key]; ok {
			ti.GenreID = d.GenreID
			ti.Memo = d.Memo
			for _, m := range d.TransportationMethods {
				ti.TransportationMethods = append(ti.TransportationMethods, int64(m))
			}
		}
		graph.Infos = append(graph.Infos, ti)
	}

	seen := map[string]struct{}{}
	for _, day := range b.Days() {
		date, err := day.Date.Time()
		if err != nil {
			return nil, err
		}
		plan := domain.Plan{ID: uuid.New(), Date: date}
		dg := domain.DayGraph{Plan: plan}

		var nodes []chainNode
		if deps := b.GetSpotInfo(day.Date, planner.RoleDeparture); len(deps) > 0 {
			nodes = append(nodes, chainNode{role: domain.TransportNodeDeparture, transport: deps[0].Transport})
		}
		for i, spot := range b.GetSpotInfo(day.Date, planner.RoleSpot) {
			ps := domain.PlanSpot{
				ID:        uuid.New(),
				PlanID:    plan.ID,
				SpotID:    spot.ID,
				StayStart: spot.StayStart,
				StayEnd:   spot.StayEnd,
				Order:     i + 1,
				Memo:      spot.Memo,
			}
			dg.Spots = append(dg.Spots, ps)
			psID := ps.ID
			nodes = append(nodes, chainNode{role: domain.TransportNodeSpot, planSpotID: &psID, transport: spot.Transport})

			if _, ok := seen[spot.ID]; !ok {
				seen[spot.ID] = struct{}{}
				graph.Spots = append(graph.Spots, spot.Meta())
			}
		}
		if dests := b.GetSpotInfo(day.Date, planner.RoleDestination); len(dests) > 0 {
			nodes = append(nodes, chainNode{role: domain.TransportNodeDestination})
		}

		for i := 0; i+1 < len(nodes); i++ {
			from, to := nodes[i], nodes[i+1]
			if from.transport == nil {
				continue
			}
			dg.Transports = append(dg.Transports, domain.Transport{
				ID:              uuid.New(),
				PlanID:          plan.ID,
				FromType:        from.role,
				FromPlanSpotID:  from.planSpotID,
				ToType:          to.role,
				ToPlanSpotID:    to.planSpotID,
				TravelTime:      from.transport.TravelTime,
				Fee:             from.transport.Fee,
				TransportMethod: from.transport.TransportMethod,
			})
		}
		graph.Days = append(graph.Days, dg)
	}
	return graph, nil
}

// loadPlanDetails attaches spots, spot metadata and transports to plans.
func loadPlanDetails(ctx context.Context, plans ports.PlanRepository, spots ports.SpotRepository, list []domain.Plan) ([]domain.PlanDetail, error) {
	details := make([]domain.PlanDetail, 0, len(list))
	if len(list) == 0 {
		return details, nil
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	planSpots, err := plans.ListSpots(ctx, ids)
	if err != nil {
		return nil, err
	}
	transports, err := plans.ListTransports(ctx, ids)
	if err != nil {
		return nil, err
	}

	spotIDs := make([]string, 0, len(planSpots))
	for _, ps := range planSpots {
		spotIDs = append(spotIDs, ps.SpotID)
	}
	meta, err := spots.FindByIDs(ctx, spotIDs)
	if err != nil {
		return nil, err
	}

	spotsByPlan := map[uuid.UUID][]domain.PlanSpotDetail{}
	for _, ps := range planSpots {
		spot, ok := meta[ps.SpotID]
		if !ok {
			spot = domain.SpotDetail{ID: ps.SpotID}
		}
		spotsByPlan[ps.PlanID] = append(spotsByPlan[ps.PlanID], domain.PlanSpotDetail{PlanSpot: ps, Spot: spot})
	}
	transportsByPlan := map[uuid.UUID][]domain.Transport{}
	for _, t := range transports {
		transportsByPlan[t.PlanID] = append(transportsByPlan[t.PlanID], t)
	}

	for _, p := range list {
		ps := spotsByPlan[p.ID]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Order < ps[j].Order })
		if ps == nil {
			ps = []domain.PlanSpotDetail{}
		}
		ts := transportsByPlan[p.ID]
		if ts == nil {
			ts = []domain.Transport{}
		}
		details = append(details, domain.PlanDetail{Plan: p, Spots: ps, Transports: ts})
	}
	return details, nil
}
