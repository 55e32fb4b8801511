package service

import (
	"context"
	"sort"
	"time"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// memStore is an in-memory implementation of HolderStore, AssetStore and
// LedgerStore for testing. AppendAlternating mirrors the repository's
// transactional semantics: one goroutine at a time, check then insert.
type memStore struct {
	holders map[string]*models.Holder
	assets  map[string]*models.Asset
	events  map[string][]*models.CustodyEvent
}

func newMemStore() *memStore {
	return &memStore{
		holders: make(map[string]*models.Holder),
		assets:  make(map[string]*models.Asset),
		events:  make(map[string][]*models.CustodyEvent),
	}
}

// Setup helpers

func (m *memStore) addHolder(code, name, orgUnit string) *models.Holder {
	h := &models.Holder{HolderCode: code, Name: name, OrgUnit: orgUnit}
	m.holders[code] = h
	return h
}

func (m *memStore) addAsset(serial string, category models.Category, holderCode string) *models.Asset {
	a := &models.Asset{Serial: serial, Category: category}
	if holderCode != "" {
		a.HolderCode = &holderCode
	}
	m.assets[serial] = a
	return a
}

func (m *memStore) addEvent(serial string, action models.CustodyAction, holderCode, holderName string, at time.Time) {
	m.events[serial] = append(m.events[serial], &models.CustodyEvent{
		Serial:     serial,
		HolderCode: holderCode,
		HolderName: holderName,
		Action:     action,
		OccurredAt: at,
	})
}

// HolderStore

func (m *memStore) Create(ctx context.Context, holder *models.Holder) error {
	if _, ok := m.holders[holder.HolderCode]; ok {
		return &models.DuplicateKeyError{Kind: "holder", Key: holder.HolderCode}
	}
	m.holders[holder.HolderCode] = holder
	return nil
}

func (m *memStore) Get(ctx context.Context, holderCode string) (*models.Holder, error) {
	h, ok := m.holders[holderCode]
	if !ok {
		return nil, &models.NotFoundError{Kind: "holder", Key: holderCode}
	}
	return h, nil
}

func (m *memStore) Update(ctx context.Context, holder *models.Holder) error {
	if _, ok := m.holders[holder.HolderCode]; !ok {
		return &models.NotFoundError{Kind: "holder", Key: holder.HolderCode}
	}
	m.holders[holder.HolderCode] = holder
	return nil
}

func (m *memStore) Delete(ctx context.Context, holderCode string) error {
	if _, ok := m.holders[holderCode]; !ok {
		return &models.NotFoundError{Kind: "holder", Key: holderCode}
	}
	delete(m.holders, holderCode)
	return nil
}

func (m *memStore) List(ctx context.Context) ([]*models.Holder, error) {
	out := make([]*models.Holder, 0, len(m.holders))
	for _, h := range m.holders {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HolderCode < out[j].HolderCode })
	return out, nil
}

// assetStore wraps memStore so AssetStore's Create/Get/Delete/List do not
// collide with HolderStore's methods of the same name.
type assetStore struct{ *memStore }

func (m *memStore) assetView() *assetStore { return &assetStore{m} }

func (s *assetStore) Create(ctx context.Context, asset *models.Asset) error {
	if _, ok := s.assets[asset.Serial]; ok {
		return &models.DuplicateKeyError{Kind: "asset", Key: asset.Serial}
	}
	s.assets[asset.Serial] = asset
	return nil
}

func (s *assetStore) Get(ctx context.Context, serial string) (*models.Asset, error) {
	a, ok := s.assets[serial]
	if !ok {
		return nil, &models.NotFoundError{Kind: "asset", Key: serial}
	}
	return a, nil
}

func (s *assetStore) UpdateDescriptive(ctx context.Context, asset *models.Asset) error {
	stored, ok := s.assets[asset.Serial]
	if !ok {
		return &models.NotFoundError{Kind: "asset", Key: asset.Serial}
	}
	stored.Make = asset.Make
	stored.Model = asset.Model
	stored.Color = asset.Color
	return nil
}

func (s *assetStore) SetHolder(ctx context.Context, serial string, holderCode *string) error {
	a, ok := s.assets[serial]
	if !ok {
		return &models.NotFoundError{Kind: "asset", Key: serial}
	}
	a.HolderCode = holderCode
	return nil
}

func (s *assetStore) SetCredentialRef(ctx context.Context, serial string, ref *string) error {
	a, ok := s.assets[serial]
	if !ok {
		return &models.NotFoundError{Kind: "asset", Key: serial}
	}
	a.CredentialRef = ref
	return nil
}

func (s *assetStore) Delete(ctx context.Context, serial string) error {
	if _, ok := s.assets[serial]; !ok {
		return &models.NotFoundError{Kind: "asset", Key: serial}
	}
	delete(s.assets, serial)
	return nil
}

func (s *assetStore) List(ctx context.Context) ([]*models.Asset, error) {
	out := make([]*models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out, nil
}

func (s *assetStore) ListByCategory(ctx context.Context, category models.Category) ([]*models.Asset, error) {
	all, _ := s.List(ctx)
	out := make([]*models.Asset, 0)
	for _, a := range all {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *assetStore) ListByHolder(ctx context.Context, holderCode string) ([]*models.Asset, error) {
	all, _ := s.List(ctx)
	out := make([]*models.Asset, 0)
	for _, a := range all {
		if a.HolderCode != nil && *a.HolderCode == holderCode {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *assetStore) FindHeldByCategory(ctx context.Context, holderCode string, category models.Category) (*models.Asset, error) {
	all, _ := s.List(ctx)
	for _, a := range all {
		if a.Category == category && a.HolderCode != nil && *a.HolderCode == holderCode {
			return a, nil
		}
	}
	return nil, nil
}

func (s *assetStore) CountByHolder(ctx context.Context, holderCode string) (int, error) {
	held, _ := s.ListByHolder(ctx, holderCode)
	return len(held), nil
}

// ledgerStore wraps memStore to expose the LedgerStore interface.
type ledgerStore struct{ *memStore }

func (m *memStore) ledgerView() *ledgerStore { return &ledgerStore{m} }

func (l *ledgerStore) Latest(ctx context.Context, serial string) (*models.CustodyEvent, error) {
	events := l.events[serial]
	if len(events) == 0 {
		return nil, nil
	}
	return events[len(events)-1], nil
}

func (l *ledgerStore) ListBySerial(ctx context.Context, serial string, limit int) ([]*models.CustodyEvent, error) {
	events := l.events[serial]
	out := make([]*models.CustodyEvent, 0, len(events))
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

func (l *ledgerStore) ListAll(ctx context.Context) ([]*models.CustodyEvent, error) {
	out := make([]*models.CustodyEvent, 0)
	for _, events := range l.events {
		out = append(out, events...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (l *ledgerStore) AppendAlternating(ctx context.Context, event *models.CustodyEvent) error {
	asset, ok := l.assets[event.Serial]
	if !ok {
		return &models.NotFoundError{Kind: "asset", Key: event.Serial}
	}

	// Snapshot the live holder at append time, like the real repository
	// does under its per-serial lock
	event.HolderCode, event.HolderName = "", ""
	if asset.HolderCode != nil {
		event.HolderCode = *asset.HolderCode
		if holder, ok := l.holders[*asset.HolderCode]; ok {
			event.HolderName = holder.Name
		}
	}

	latest, _ := l.Latest(ctx, event.Serial)
	if latest != nil && latest.Action == event.Action {
		return &models.RedundantActionError{Serial: event.Serial, Action: event.Action}
	}
	if latest == nil && event.Action == models.ActionCheckIn {
		return &models.RedundantActionError{Serial: event.Serial, Action: event.Action}
	}

	l.events[event.Serial] = append(l.events[event.Serial], event)
	return nil
}

// fakeInvalidator records which serials had their credential dropped.
type fakeInvalidator struct {
	dropped []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, serial string) error {
	f.dropped = append(f.dropped, serial)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}
