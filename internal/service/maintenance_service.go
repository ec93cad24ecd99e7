package service

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/vbonduro/homeclean/internal/backup"
	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
	"github.com/vbonduro/homeclean/internal/status"
	"github.com/vbonduro/homeclean/internal/store"
)

// areaTypeRepository is the subset of store.AreaTypeStore that
// MaintenanceService requires.
type areaTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AreaType, error)
}

// areaRepository is the subset of store.AreaStore that MaintenanceService
// requires.
type areaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Area, error)
	List(ctx context.Context) ([]*domain.Area, error)
}

// areaGroupRepository is the subset of store.AreaGroupStore that
// MaintenanceService requires.
type areaGroupRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AreaGroup, error)
	ListAreas(ctx context.Context, groupID int64) ([]*domain.Area, error)
	ListAreasNotInGroup(ctx context.Context, groupID int64) ([]*domain.Area, error)
	ListGroupsForArea(ctx context.Context, areaID int64) ([]*domain.AreaGroup, error)
}

// itemRepository is the subset of store.ItemStore that MaintenanceService
// requires.
type itemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	ListByAreaID(ctx context.Context, areaID int64) ([]*domain.Item, error)
	ListParts(ctx context.Context, itemID int64) ([]*domain.ItemPart, error)
}

// itemPartRepository is the subset of store.ItemPartStore that
// MaintenanceService requires.
type itemPartRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ItemPart, error)
	List(ctx context.Context) ([]*domain.ItemPart, error)
	MarkDone(ctx context.Context, id int64) (*domain.ItemPart, error)
}

// snapshotter is the subset of db.Store used for export and import.
type snapshotter interface {
	ExportAll(ctx context.Context) (db.Snapshot, error)
	ImportAll(ctx context.Context, snap db.Snapshot) error
}

// MaintenanceService assembles the views built from several repositories:
// statuses, sorted lists, details, and backups.
type MaintenanceService struct {
	areaTypes  areaTypeRepository
	areas      areaRepository
	areaGroups areaGroupRepository
	items      itemRepository
	parts      itemPartRepository
	snapshots  snapshotter
	archive    backup.Archive
	calc       *status.Calculator
	logger     *slog.Logger
}

func NewMaintenanceService(
	repos *store.Repositories,
	snapshots snapshotter,
	archive backup.Archive,
	calc *status.Calculator,
	logger *slog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		areaTypes:  repos.AreaTypes,
		areas:      repos.Areas,
		areaGroups: repos.AreaGroups,
		items:      repos.Items,
		parts:      repos.ItemParts,
		snapshots:  snapshots,
		archive:    archive,
		calc:       calc,
		logger:     logger,
	}
}

// PartStatus is a part with its derived status. DaysSince is nil for a part
// that has never been done.
type PartStatus struct {
	Part      *domain.ItemPart `json:"part"`
	Status    status.Status    `json:"status"`
	Label     string           `json:"label"`
	DaysSince *int             `json:"daysSince"`
}

// ItemSummary is an item with its area name and the worst status among its
// parts.
type ItemSummary struct {
	Item     *domain.Item  `json:"item"`
	AreaName string        `json:"areaName"`
	Status   status.Status `json:"status"`
	Parts    int           `json:"parts"`
}

type ItemDetail struct {
	Item   *domain.Item  `json:"item"`
	Area   *domain.Area  `json:"area"`
	Status status.Status `json:"status"`
	Parts  []PartStatus  `json:"parts"`
}

type AreaDetail struct {
	Area     *domain.Area        `json:"area"`
	AreaType *domain.AreaType    `json:"areaType"`
	Status   status.Status       `json:"status"`
	Items    []ItemSummary       `json:"items"`
	Groups   []*domain.AreaGroup `json:"groups"`
}

type AreaGroupDetail struct {
	Group           *domain.AreaGroup `json:"group"`
	Areas           []*domain.Area    `json:"areas"`
	AreasNotInGroup []*domain.Area    `json:"areasNotInGroup"`
}

type PartDetail struct {
	PartStatus
	Item *domain.Item `json:"item"`
}

// DuePart is a red or yellow part with the names needed to locate it.
// Overdue is days past the due date, negative while the part is only due
// soon; a part never done counts as overdue by its full frequency.
type DuePart struct {
	PartStatus
	ItemName string `json:"itemName"`
	AreaName string `json:"areaName"`
	Overdue  int    `json:"overdue"`
}

func (s *MaintenanceService) partStatus(p *domain.ItemPart) PartStatus {
	ps := PartStatus{Part: p, Status: s.calc.Of(p.FreqDays, p.LastDoneAt)}
	ps.Label = ps.Status.Label()
	if days, ok := s.calc.DaysSince(p.LastDoneAt); ok {
		ps.DaysSince = &days
	}
	return ps
}

func (s *MaintenanceService) partStatuses(parts []*domain.ItemPart) []PartStatus {
	out := make([]PartStatus, 0, len(parts))
	for _, p := range parts {
		out = append(out, s.partStatus(p))
	}
	slices.SortStableFunc(out, func(a, b PartStatus) int {
		return status.Compare(a.Status, b.Status)
	})
	return out
}

func aggregate(parts []PartStatus) status.Status {
	statuses := make([]status.Status, 0, len(parts))
	for _, p := range parts {
		statuses = append(statuses, p.Status)
	}
	return status.Worst(statuses...)
}

// summaries computes an ItemSummary per item, worst first and then by name.
func (s *MaintenanceService) summaries(items []*domain.Item, partsByItem map[int64][]*domain.ItemPart, areaNames map[int64]string) []ItemSummary {
	out := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		parts := partsByItem[item.ID]
		out = append(out, ItemSummary{
			Item:     item,
			AreaName: areaNames[item.AreaID],
			Status:   aggregate(s.partStatuses(parts)),
			Parts:    len(parts),
		})
	}
	slices.SortStableFunc(out, func(a, b ItemSummary) int {
		if c := status.Compare(a.Status, b.Status); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.Name, b.Item.Name)
	})
	return out
}

func (s *MaintenanceService) partsByItem(ctx context.Context) (map[int64][]*domain.ItemPart, error) {
	parts, err := s.parts.List(ctx)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64][]*domain.ItemPart)
	for _, p := range parts {
		byItem[p.ItemID] = append(byItem[p.ItemID], p)
	}
	return byItem, nil
}

func (s *MaintenanceService) areaNames(ctx context.Context) (map[int64]string, error) {
	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(areas))
	for _, a := range areas {
		names[a.ID] = a.Name
	}
	return names, nil
}

// ListItems returns every item, worst status first.
func (s *MaintenanceService) ListItems(ctx context.Context) ([]ItemSummary, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	byItem, err := s.partsByItem(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.areaNames(ctx)
	if err != nil {
		return nil, err
	}
	return s.summaries(items, byItem, names), nil
}

func (s *MaintenanceService) ItemDetail(ctx context.Context, itemID int64) (*ItemDetail, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &domain.NotFoundError{Entity: domain.EntityItem, ID: itemID}
	}

	area, err := s.areas.GetByID(ctx, item.AreaID)
	if err != nil {
		return nil, err
	}
	parts, err := s.items.ListParts(ctx, itemID)
	if err != nil {
		return nil, err
	}

	statuses := s.partStatuses(parts)
	return &ItemDetail{Item: item, Area: area, Status: aggregate(statuses), Parts: statuses}, nil
}

func (s *MaintenanceService) AreaDetail(ctx context.Context, areaID int64) (*AreaDetail, error) {
	area, err := s.areas.GetByID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, &domain.NotFoundError{Entity: domain.EntityArea, ID: areaID}
	}

	areaType, err := s.areaTypes.GetByID(ctx, area.AreaTypeID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByAreaID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64][]*domain.ItemPart, len(items))
	for _, item := range items {
		parts, err := s.items.ListParts(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		byItem[item.ID] = parts
	}
	groups, err := s.areaGroups.ListGroupsForArea(ctx, areaID)
	if err != nil {
		return nil, err
	}

	summaries := s.summaries(items, byItem, map[int64]string{area.ID: area.Name})
	itemStatuses := make([]status.Status, 0, len(summaries))
	for _, sum := range summaries {
		if sum.Status != status.None {
			itemStatuses = append(itemStatuses, sum.Status)
		}
	}
	return &AreaDetail{
		Area:     area,
		AreaType: areaType,
		Status:   status.Worst(itemStatuses...),
		Items:    summaries,
		Groups:   groups,
	}, nil
}

func (s *MaintenanceService) AreaGroupDetail(ctx context.Context, groupID int64) (*AreaGroupDetail, error) {
	group, err := s.areaGroups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Entity: domain.EntityAreaGroup, ID: groupID}
	}

	members, err := s.areaGroups.ListAreas(ctx, groupID)
	if err != nil {
		return nil, err
	}
	others, err := s.areaGroups.ListAreasNotInGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return &AreaGroupDetail{Group: group, Areas: members, AreasNotInGroup: others}, nil
}

func (s *MaintenanceService) PartDetail(ctx context.Context, partID int64) (*PartDetail, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, &domain.NotFoundError{Entity: domain.EntityItemPart, ID: partID}
	}
	return s.partDetail(ctx, part)
}

func (s *MaintenanceService) partDetail(ctx context.Context, part *domain.ItemPart) (*PartDetail, error) {
	item, err := s.items.GetByID(ctx, part.ItemID)
	if err != nil {
		return nil, err
	}
	return &PartDetail{PartStatus: s.partStatus(part), Item: item}, nil
}

// MarkDone records the part as done now and returns its refreshed detail.
func (s *MaintenanceService) MarkDone(ctx context.Context, partID int64) (*PartDetail, error) {
	part, err := s.parts.MarkDone(ctx, partID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("part marked done", "part_id", partID, "last_done_at", part.LastDoneAt)
	return s.partDetail(ctx, part)
}

// DueParts returns every red or yellow part, worst first and then most
// overdue first.
func (s *MaintenanceService) DueParts(ctx context.Context) ([]DuePart, error) {
	parts, err := s.parts.List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.areaNames(ctx)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[int64]*domain.Item, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	due := make([]DuePart, 0)
	for _, p := range parts {
		ps := s.partStatus(p)
		if ps.Status != status.Red && ps.Status != status.Yellow {
			continue
		}
		dp := DuePart{PartStatus: ps, Overdue: p.FreqDays}
		if ps.DaysSince != nil {
			dp.Overdue = *ps.DaysSince - p.FreqDays
		}
		if item := itemsByID[p.ItemID]; item != nil {
			dp.ItemName = item.Name
			dp.AreaName = names[item.AreaID]
		}
		due = append(due, dp)
	}
	slices.SortStableFunc(due, func(a, b DuePart) int {
		if c := status.Compare(a.Status, b.Status); c != 0 {
			return c
		}
		return cmp.Compare(b.Overdue, a.Overdue)
	})
	return due, nil
}

// Export writes every collection to w.
func (s *MaintenanceService) Export(ctx context.Context, w io.Writer, f backup.Format) error {
	snap, err := s.snapshots.ExportAll(ctx)
	if err != nil {
		return err
	}
	return backup.Encode(w, snap, f)
}

// Import replaces the collections present in the document read from r.
func (s *MaintenanceService) Import(ctx context.Context, r io.Reader, f backup.Format) error {
	snap, err := backup.Decode(r, f)
	if err != nil {
		return err
	}
	return s.snapshots.ImportAll(ctx, snap)
}

const maxBackupNameAttempts = 100

// Backup saves a timestamped JSON snapshot in the archive and returns its
// key.
func (s *MaintenanceService) Backup(ctx context.Context) (string, error) {
	snap, err := s.snapshots.ExportAll(ctx)
	if err != nil {
		return "", err
	}
	buf, err := backup.EncodeBytes(snap, backup.JSON)
	if err != nil {
		return "", err
	}
	data := buf.Bytes()
	takenAt := s.calc.Now()

	var key string
	for seq := 0; ; seq++ {
		key, err = s.archive.Save(ctx, backup.Name(takenAt, seq, backup.JSON), bytes.NewReader(data))
		if err == nil {
			break
		}
		if !errors.Is(err, backup.ErrExists) || seq >= maxBackupNameAttempts {
			return "", fmt.Errorf("failed to save backup: %w", err)
		}
	}
	s.logger.Info("backup saved", "key", key, "bytes", len(data))
	return key, nil
}

// DeleteBackup removes the archived snapshot stored under key.
func (s *MaintenanceService) DeleteBackup(ctx context.Context, key string) error {
	if err := s.archive.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", key, err)
	}
	s.logger.Info("backup deleted", "key", key)
	return nil
}

// Restore imports the archived snapshot stored under key.
func (s *MaintenanceService) Restore(ctx context.Context, key string) error {
	rc, err := s.archive.Open(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if err := s.Import(ctx, rc, backup.FormatFromPath(key)); err != nil {
		return fmt.Errorf("failed to restore %s: %w", key, err)
	}
	s.logger.Info("backup restored", "key", key)
	return nil
}

func (s *MaintenanceService) ListBackups(ctx context.Context) ([]backup.Entry, error) {
	return s.archive.List(ctx)
}
