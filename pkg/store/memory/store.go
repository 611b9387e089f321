// Package memory is an in-process store.Catalog and store.AssetSink backed by
// maps. It seeds from a YAML fixture and is used by tests and the CLI.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/store"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how new asset ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

// Store keeps catalog records and assets in memory.
type Store struct {
	mu         sync.RWMutex
	assetTypes map[string]model.AssetType
	typeOrder  []string
	core       map[string]model.FieldSet
	forms      map[string]model.FormDefinition
	formOrder  []string
	custom     map[string]model.FieldSet
	rules      map[string][]model.FormRule
	assets     map[string]model.Asset

	now    func() time.Time
	nextID func() string
}

var (
	_ store.Catalog   = (*Store)(nil)
	_ store.AssetSink = (*Store)(nil)
)

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		assetTypes: make(map[string]model.AssetType),
		core:       make(map[string]model.FieldSet),
		forms:      make(map[string]model.FormDefinition),
		custom:     make(map[string]model.FieldSet),
		rules:      make(map[string][]model.FormRule),
		assets:     make(map[string]model.Asset),
		now:        time.Now,
		nextID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewFromFixture seeds a store from a parsed fixture. Forms pointing at an
// unknown asset type are rejected.
func NewFromFixture(fixture Fixture, opts ...Option) (*Store, error) {
	s := New(opts...)
	core, custom, err := fixture.FieldSets()
	if err != nil {
		return nil, err
	}
	for _, at := range fixture.AssetTypes {
		if at.ID == "" {
			return nil, fmt.Errorf("memory: asset type %q has no id", at.Name)
		}
		s.PutAssetType(at.AssetType, core[at.ID])
	}
	for _, form := range fixture.Forms {
		if form.ID == "" {
			return nil, fmt.Errorf("memory: form %q has no id", form.Name)
		}
		if form.AssetTypeID != "" {
			if _, ok := s.assetTypes[form.AssetTypeID]; !ok {
				return nil, fmt.Errorf("memory: form %q references unknown asset type %q", form.ID, form.AssetTypeID)
			}
		}
		rules := make([]model.FormRule, 0, len(form.Rules))
		for _, fixtureRule := range form.Rules {
			rule, err := fixtureRule.Rule()
			if err != nil {
				return nil, err
			}
			rule.FormID = form.ID
			rules = append(rules, rule)
		}
		s.PutForm(form.FormDefinition, custom[form.ID], rules...)
	}
	return s, nil
}

// PutAssetType inserts or replaces an asset type and its core fields.
func (s *Store) PutAssetType(at model.AssetType, core model.FieldSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assetTypes[at.ID]; !ok {
		s.typeOrder = append(s.typeOrder, at.ID)
	}
	core.Origin = model.OriginCore
	core.OwnerID = at.ID
	s.assetTypes[at.ID] = at
	s.core[at.ID] = cloneSet(core)
}

// PutForm inserts or replaces a form definition, its custom fields and rules.
func (s *Store) PutForm(form model.FormDefinition, fields model.FieldSet, rules ...model.FormRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[form.ID]; !ok {
		s.formOrder = append(s.formOrder, form.ID)
	}
	fields.Origin = model.OriginCustom
	fields.OwnerID = form.ID
	s.forms[form.ID] = form
	s.custom[form.ID] = cloneSet(fields)
	s.rules[form.ID] = append([]model.FormRule(nil), rules...)
}

func (s *Store) AssetType(_ context.Context, id string) (model.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.assetTypes[id]
	if !ok {
		return model.AssetType{}, store.NotFound("asset type", id)
	}
	return at, nil
}

// AssetTypes lists asset types in insertion order.
func (s *Store) AssetTypes(_ context.Context) ([]model.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AssetType, 0, len(s.typeOrder))
	for _, id := range s.typeOrder {
		out = append(out, s.assetTypes[id])
	}
	return out, nil
}

func (s *Store) CoreFields(_ context.Context, assetTypeID string) (model.FieldSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.assetTypes[assetTypeID]; !ok {
		return model.FieldSet{}, store.NotFound("asset type", assetTypeID)
	}
	return cloneSet(s.core[assetTypeID]), nil
}

// Forms lists the published forms scoped to the asset type in insertion
// order.
func (s *Store) Forms(_ context.Context, assetTypeID string) ([]model.FormDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.assetTypes[assetTypeID]; !ok {
		return nil, store.NotFound("asset type", assetTypeID)
	}
	var out []model.FormDefinition
	for _, id := range s.formOrder {
		form := s.forms[id]
		if form.AssetTypeID == assetTypeID && form.IsPublished {
			out = append(out, form)
		}
	}
	return out, nil
}

func (s *Store) Form(_ context.Context, id string) (model.FormDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[id]
	if !ok {
		return model.FormDefinition{}, store.NotFound("form", id)
	}
	return form, nil
}

func (s *Store) FormFields(_ context.Context, formID string) (model.FieldSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.forms[formID]; !ok {
		return model.FieldSet{}, store.NotFound("form", formID)
	}
	return cloneSet(s.custom[formID]), nil
}

// FormRules returns the stored rules for a form.
func (s *Store) FormRules(_ context.Context, formID string) ([]model.FormRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.forms[formID]; !ok {
		return nil, store.NotFound("form", formID)
	}
	return append([]model.FormRule(nil), s.rules[formID]...), nil
}

// CreateAsset stores a new asset, minting an id when none is set.
func (s *Store) CreateAsset(ctx context.Context, asset model.Asset) (model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return model.Asset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset.AssetTypeID != "" {
		if _, ok := s.assetTypes[asset.AssetTypeID]; !ok {
			return model.Asset{}, store.NotFound("asset type", asset.AssetTypeID)
		}
	}
	if asset.ID == "" {
		asset.ID = s.nextID()
	}
	if _, exists := s.assets[asset.ID]; exists {
		return model.Asset{}, fmt.Errorf("memory: asset %q already exists", asset.ID)
	}
	now := s.now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	asset.Data = asset.Data.Clone()
	s.assets[asset.ID] = asset
	return cloneAsset(asset), nil
}

// UpdateAsset replaces an existing asset, keeping its creation time.
func (s *Store) UpdateAsset(ctx context.Context, asset model.Asset) (model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return model.Asset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.assets[asset.ID]
	if !ok {
		return model.Asset{}, store.NotFound("asset", asset.ID)
	}
	asset.CreatedAt = existing.CreatedAt
	asset.UpdatedAt = s.now().UTC()
	asset.Data = asset.Data.Clone()
	s.assets[asset.ID] = asset
	return cloneAsset(asset), nil
}

// Asset returns a stored asset.
func (s *Store) Asset(_ context.Context, id string) (model.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return model.Asset{}, store.NotFound("asset", id)
	}
	return cloneAsset(asset), nil
}

// Assets lists stored assets sorted by id.
func (s *Store) Assets(_ context.Context) ([]model.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Asset, 0, len(s.assets))
	for _, asset := range s.assets {
		out = append(out, cloneAsset(asset))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneSet(set model.FieldSet) model.FieldSet {
	set.Fields = append([]model.FieldDescriptor(nil), set.Fields...)
	return set
}

func cloneAsset(asset model.Asset) model.Asset {
	asset.Data = asset.Data.Clone()
	return asset
}
