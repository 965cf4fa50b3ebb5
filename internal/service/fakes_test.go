package service

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type passthroughTx struct {
	calls int
}

func (t *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	promoted []string
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUserRepo) Upsert(ctx context.Context, identity domain.Identity, promote bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	u, ok := r.users[identity.UserID]
	if !ok {
		u = &domain.User{ID: identity.UserID, Role: domain.UserRoleUser, CreatedAt: now}
		r.users[identity.UserID] = u
	}
	u.Email = identity.Email
	u.Name = identity.Name
	u.Image = identity.Image
	u.LastLoginAt = &now
	if promote {
		u.Role = domain.UserRoleAdmin
		r.promoted = append(r.promoted, u.ID)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.LastLoginAt != nil && !u.LastLoginAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context) ([]domain.RoleCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.UserRole]int64{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	out := make([]domain.RoleCount, 0, len(counts))
	for role, c := range counts {
		out = append(out, domain.RoleCount{Role: role, Count: c})
	}
	return out, nil
}

func (r *fakeUserRepo) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSpotRepo struct {
	spots   map[string]domain.SpotDetail
	upserts int
}

func newFakeSpotRepo() *fakeSpotRepo {
	return &fakeSpotRepo{spots: map[string]domain.SpotDetail{}}
}

func (r *fakeSpotRepo) Upsert(ctx context.Context, spot domain.SpotDetail) error {
	r.upserts++
	r.spots[spot.ID] = spot
	return nil
}

func (r *fakeSpotRepo) FindByID(ctx context.Context, id string) (*domain.SpotDetail, error) {
	s, ok := r.spots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *fakeSpotRepo) FindByIDs(ctx context.Context, ids []string) (map[string]domain.SpotDetail, error) {
	out := map[string]domain.SpotDetail{}
	for _, id := range ids {
		if s, ok := r.spots[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeWishlistRepo struct {
	rows    []domain.Wishlist
	count   int64
	created int
}

func (r *fakeWishlistRepo) Create(ctx context.Context, item *domain.Wishlist) (*domain.Wishlist, error) {
	for _, row := range r.rows {
		if row.UserID == item.UserID && row.SpotID == item.SpotID {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "wishlists_user_id_spot_id_key"}
		}
	}
	created := *item
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.rows = append(r.rows, created)
	r.created++
	return &created, nil
}

func (r *fakeWishlistRepo) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.WishlistPatch) (*domain.Wishlist, error) {
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			if patch.Priority != nil {
				r.rows[i].Priority = *patch.Priority
			}
			if patch.Memo != nil {
				r.rows[i].Memo = patch.Memo
			}
			if patch.Visited != nil {
				r.rows[i].Visited = *patch.Visited
			}
			updated := r.rows[i]
			return &updated, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeWishlistRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeWishlistRepo) FindByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Wishlist, error) {
	for _, row := range r.rows {
		if row.ID == id && row.UserID == userID {
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeWishlistRepo) List(ctx context.Context, userID string, filter domain.WishlistFilter) ([]domain.WishlistItem, error) {
	var out []domain.WishlistItem
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if filter.Visited != nil && row.Visited != *filter.Visited {
			continue
		}
		out = append(out, domain.WishlistItem{Wishlist: row, Spot: domain.SpotDetail{ID: row.SpotID}})
	}
	return sliceRows(out, filter.Limit, filter.Offset), nil
}

func (r *fakeWishlistRepo) CountByUser(ctx context.Context, userID string, visited *bool) (int64, error) {
	if r.count > 0 {
		return r.count, nil
	}
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && (visited == nil || row.Visited == *visited) {
			n++
		}
	}
	return n, nil
}

func (r *fakeWishlistRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

type fakeTripRepo struct {
	trips       map[uuid.UUID]domain.Trip
	infos       map[uuid.UUID][]domain.TripInfo
	countByUser int64
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: map[uuid.UUID]domain.Trip{}, infos: map[uuid.UUID][]domain.TripInfo{}}
}

func (r *fakeTripRepo) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	created := *trip
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.trips[created.ID] = created
	return &created, nil
}

func (r *fakeTripRepo) Update(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	existing, ok := r.trips[trip.ID]
	if !ok || existing.UserID != trip.UserID {
		return nil, sql.ErrNoRows
	}
	existing.Title = trip.Title
	existing.StartDate = trip.StartDate
	existing.EndDate = trip.EndDate
	r.trips[trip.ID] = existing
	return &existing, nil
}

func (r *fakeTripRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	existing, ok := r.trips[id]
	if !ok || existing.UserID != userID {
		return sql.ErrNoRows
	}
	delete(r.trips, id)
	return nil
}

func (r *fakeTripRepo) FindByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Trip, error) {
	existing, ok := r.trips[id]
	if !ok || existing.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return &existing, nil
}

func (r *fakeTripRepo) ListByUser(ctx context.Context, userID string) ([]domain.TripSummary, error) {
	var out []domain.TripSummary
	for _, t := range r.trips {
		if t.UserID == userID {
			out = append(out, domain.TripSummary{Trip: t})
		}
	}
	return out, nil
}

func (r *fakeTripRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	if r.countByUser > 0 {
		return r.countByUser, nil
	}
	var n int64
	for _, t := range r.trips {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTripRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.trips)), nil
}

func (r *fakeTripRepo) SetImage(ctx context.Context, userID string, id uuid.UUID, imageURL string) (*domain.Trip, error) {
	existing, ok := r.trips[id]
	if !ok || existing.UserID != userID {
		return nil, sql.ErrNoRows
	}
	existing.ImageURL = &imageURL
	r.trips[id] = existing
	return &existing, nil
}

func (r *fakeTripRepo) ReplaceInfos(ctx context.Context, tripID uuid.UUID, infos []domain.TripInfo) error {
	r.infos[tripID] = append([]domain.TripInfo(nil), infos...)
	return nil
}

func (r *fakeTripRepo) ListInfos(ctx context.Context, tripID uuid.UUID) ([]domain.TripInfo, error) {
	return r.infos[tripID], nil
}

type fakePlanRepo struct {
	trips      *fakeTripRepo
	plans      map[uuid.UUID]domain.Plan
	spots      []domain.PlanSpot
	transports []domain.Transport
	spotCount  int64
}

func newFakePlanRepo(trips *fakeTripRepo) *fakePlanRepo {
	return &fakePlanRepo{trips: trips, plans: map[uuid.UUID]domain.Plan{}}
}

func (r *fakePlanRepo) ReplaceForTrip(ctx context.Context, tripID uuid.UUID, days []domain.DayGraph) error {
	for id, p := range r.plans {
		if p.TripID == tripID {
			delete(r.plans, id)
		}
	}
	for _, d := range days {
		p := d.Plan
		p.TripID = tripID
		r.plans[p.ID] = p
		r.spots = append(r.spots, d.Spots...)
		r.transports = append(r.transports, d.Transports...)
	}
	return nil
}

func (r *fakePlanRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range r.plans {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakePlanRepo) FindOwned(ctx context.Context, userID string, planID uuid.UUID) (*domain.Plan, error) {
	p, ok := r.plans[planID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if _, err := r.trips.FindByID(ctx, userID, p.TripID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *fakePlanRepo) ListSpots(ctx context.Context, planIDs []uuid.UUID) ([]domain.PlanSpot, error) {
	var out []domain.PlanSpot
	for _, s := range r.spots {
		for _, id := range planIDs {
			if s.PlanID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (r *fakePlanRepo) ListTransports(ctx context.Context, planIDs []uuid.UUID) ([]domain.Transport, error) {
	var out []domain.Transport
	for _, t := range r.transports {
		for _, id := range planIDs {
			if t.PlanID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (r *fakePlanRepo) CountSpots(ctx context.Context, planID uuid.UUID) (int64, error) {
	if r.spotCount > 0 {
		return r.spotCount, nil
	}
	spots, _ := r.ListSpots(ctx, []uuid.UUID{planID})
	return int64(len(spots)), nil
}

func (r *fakePlanRepo) NextSpotOrder(ctx context.Context, planID uuid.UUID) (int, error) {
	next := 1
	for _, s := range r.spots {
		if s.PlanID == planID && s.Order >= next {
			next = s.Order + 1
		}
	}
	return next, nil
}

func (r *fakePlanRepo) AddSpot(ctx context.Context, spot *domain.PlanSpot) (*domain.PlanSpot, error) {
	created := *spot
	created.ID = uuid.New()
	r.spots = append(r.spots, created)
	return &created, nil
}

func (r *fakePlanRepo) UpdateSpot(ctx context.Context, planID, planSpotID uuid.UUID, patch domain.PlanSpotPatch) (*domain.PlanSpot, error) {
	for i := range r.spots {
		s := &r.spots[i]
		if s.ID != planSpotID || s.PlanID != planID {
			continue
		}
		if patch.StayStart != nil {
			s.StayStart = *patch.StayStart
		}
		if patch.StayEnd != nil {
			s.StayEnd = *patch.StayEnd
		}
		if patch.Order != nil {
			s.Order = *patch.Order
		}
		if patch.Memo != nil {
			s.Memo = patch.Memo
		}
		updated := *s
		return &updated, nil
	}
	return nil, sql.ErrNoRows
}

func (r *fakePlanRepo) DeleteSpot(ctx context.Context, planID, planSpotID uuid.UUID) error {
	for i := range r.spots {
		if r.spots[i].ID == planSpotID && r.spots[i].PlanID == planID {
			r.spots = append(r.spots[:i], r.spots[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakeNotificationRepo keeps recipients per notification so fan-out can be
// checked row by row.
type fakeNotificationRepo struct {
	userIDs       []string
	notifications map[uuid.UUID]domain.Notification
	recipients    map[uuid.UUID]map[string]*domain.UserNotification
	stats         []domain.NotificationReadStats
	adminCount    int64

	lastLimit  int
	lastOffset int
	lastSort   domain.NotificationSortField
}

func newFakeNotificationRepo(userIDs ...string) *fakeNotificationRepo {
	return &fakeNotificationRepo{
		userIDs:       userIDs,
		notifications: map[uuid.UUID]domain.Notification{},
		recipients:    map[uuid.UUID]map[string]*domain.UserNotification{},
	}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	created := *n
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.notifications[created.ID] = created
	return &created, nil
}

func (r *fakeNotificationRepo) Update(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if _, ok := r.notifications[n.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	r.notifications[n.ID] = *n
	updated := *n
	return &updated, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.notifications[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.notifications, id)
	delete(r.recipients, id)
	return nil
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &n, nil
}

func (r *fakeNotificationRepo) FanOut(ctx context.Context, id uuid.UUID) (int64, error) {
	rows, ok := r.recipients[id]
	if !ok {
		rows = map[string]*domain.UserNotification{}
		r.recipients[id] = rows
	}
	for _, userID := range r.userIDs {
		row, ok := rows[userID]
		if !ok {
			rows[userID] = &domain.UserNotification{UserID: userID, NotificationID: id, CreatedAt: time.Now()}
			continue
		}
		row.IsRead = false
		row.ReadAt = nil
	}
	return int64(len(r.userIDs)), nil
}

func (r *fakeNotificationRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.notifications)), nil
}

func (r *fakeNotificationRepo) CountAdmin(ctx context.Context, filter domain.NotificationAdminFilter) (int64, error) {
	if r.adminCount > 0 {
		return r.adminCount, nil
	}
	return int64(len(r.stats)), nil
}

func (r *fakeNotificationRepo) ListAdmin(ctx context.Context, filter domain.NotificationAdminFilter, limit, offset int) ([]domain.NotificationReadStats, error) {
	r.lastLimit, r.lastOffset, r.lastSort = limit, offset, filter.SortBy
	rows := append([]domain.NotificationReadStats(nil), r.stats...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PublishedAt.After(rows[j].PublishedAt) })
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeNotificationRepo) ListInbox(ctx context.Context, userID string, limit, offset int) ([]domain.InboxNotification, error) {
	var out []domain.InboxNotification
	for id, rows := range r.recipients {
		if row, ok := rows[userID]; ok {
			out = append(out, domain.InboxNotification{Notification: r.notifications[id], IsRead: row.IsRead, ReadAt: row.ReadAt})
		}
	}
	return sliceRows(out, limit, offset), nil
}

func (r *fakeNotificationRepo) CountInbox(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, rows := range r.recipients {
		if _, ok := rows[userID]; ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, rows := range r.recipients {
		if row, ok := rows[userID]; ok && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	row, ok := r.recipients[id][userID]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	row.IsRead = true
	row.ReadAt = &now
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var n int64
	now := time.Now()
	for _, rows := range r.recipients {
		if row, ok := rows[userID]; ok && !row.IsRead {
			row.IsRead = true
			row.ReadAt = &now
			n++
		}
	}
	return n, nil
}

func sliceRows[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
	removed []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := bucket + "/" + objectName
	m.objects[key] = data
	m.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryStorage) Remove(ctx context.Context, bucket, objectName string) error {
	m.removed = append(m.removed, bucket+"/"+objectName)
	return nil
}
