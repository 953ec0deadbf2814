package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/app/dto"
	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	"github.com/stackvolt/wattwise/utils"
)

// ScenarioFlow covers saved scenarios and side-by-side comparison. All reads
// and writes are scoped to the calling owner; a scenario saved by one session
// is invisible to every other session and user.
type ScenarioFlow interface {
	SaveScenario(ctx context.Context, owner Owner, req *dto.SaveScenarioRequest, metadata *ClientMetadata) (*dto.SaveScenarioResponse, error)
	ListScenarios(ctx context.Context, owner Owner, limit, offset int) (*dto.ListScenariosResponse, error)
	GetScenario(ctx context.Context, owner Owner, scenarioUUID string) (*dto.GetScenarioResponse, error)
	DeleteScenario(ctx context.Context, owner Owner, scenarioUUID string) error
	MarkBaseline(ctx context.Context, owner Owner, scenarioUUID string) (*dto.ScenarioItem, error)
	CompareScenarios(ctx context.Context, owner Owner, req *dto.CompareScenariosRequest) (*dto.CompareScenariosResponse, error)
	CreateComparisonSet(ctx context.Context, owner Owner, req *dto.CreateComparisonSetRequest, metadata *ClientMetadata) (*dto.CreateComparisonSetResponse, error)
	ListComparisonSets(ctx context.Context, owner Owner) (*dto.ListComparisonSetsResponse, error)
	DeleteComparisonSet(ctx context.Context, owner Owner, setUUID string) error
	CompareSet(ctx context.Context, owner Owner, setUUID string) (*dto.CompareScenariosResponse, error)
}

// ScenarioFlowImpl implements ScenarioFlow.
type ScenarioFlowImpl struct {
	scenarioRepo repository.SavedScenarioRepository
	setRepo      repository.ComparisonSetRepository
	db           *gorm.DB
}

// NewScenarioFlow creates a new scenario flow.
func NewScenarioFlow(
	scenarioRepo repository.SavedScenarioRepository,
	setRepo repository.ComparisonSetRepository,
	db *gorm.DB,
) ScenarioFlow {
	return &ScenarioFlowImpl{
		scenarioRepo: scenarioRepo,
		setRepo:      setRepo,
		db:           db,
	}
}

func (f *ScenarioFlowImpl) SaveScenario(ctx context.Context, owner Owner, req *dto.SaveScenarioRequest, metadata *ClientMetadata) (*dto.SaveScenarioResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}
	if req.Name == "" {
		return nil, NewBusinessError("MISSING_SCENARIO_NAME", "scenario name is required", ErrScenarioNameRequired)
	}
	if len(req.InputState) == 0 {
		return nil, NewBusinessError("MISSING_INPUT_STATE", "scenario input state is required", ErrInputStateRequired)
	}

	results := req.CalculatedResults
	if len(results) == 0 {
		results = json.RawMessage("{}")
	}

	row := models.SavedScenario{
		UUID:              uuid.New(),
		UserID:            owner.UserID,
		SessionID:         owner.SessionID,
		Name:              req.Name,
		UseCaseSlug:       req.UseCaseSlug,
		InputState:        req.InputState,
		CalculatedResults: results,
		PeakKW:            req.PeakKW,
		KWhCapacity:       req.KWhCapacity,
		TotalCost:         req.TotalCost,
		AnnualSavings:     req.AnnualSavings,
		PaybackYears:      req.PaybackYears,
		IsBaseline:        utils.ToPtr(false),
	}

	if err := f.scenarioRepo.Save(ctx, &row); err != nil {
		return nil, NewBusinessError("SAVE_SCENARIO_FAILED", "Failed to save scenario", err)
	}

	resp := &dto.SaveScenarioResponse{
		Message:  "Scenario saved successfully",
		Scenario: toScenarioItem(&row),
	}
	if owner.IsAnonymous() {
		resp.SessionToken = owner.SessionID
	}
	return resp, nil
}

func (f *ScenarioFlowImpl) ListScenarios(ctx context.Context, owner Owner, limit, offset int) (*dto.ListScenariosResponse, error) {
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}

	rows, err := f.scenarioRepo.ListByOwner(ctx, owner.UserID, owner.SessionID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_SCENARIOS_FAILED", "Failed to list scenarios", err)
	}

	items := make([]dto.ScenarioItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toScenarioItem(row))
	}

	return &dto.ListScenariosResponse{
		Message: "Scenarios retrieved",
		Items:   items,
	}, nil
}

func (f *ScenarioFlowImpl) GetScenario(ctx context.Context, owner Owner, scenarioUUID string) (*dto.GetScenarioResponse, error) {
	row, err := f.ownedScenario(ctx, owner, scenarioUUID)
	if err != nil {
		return nil, err
	}

	return &dto.GetScenarioResponse{
		Message:           "Scenario retrieved",
		Scenario:          toScenarioItem(row),
		InputState:        row.InputState,
		CalculatedResults: row.CalculatedResults,
	}, nil
}

func (f *ScenarioFlowImpl) DeleteScenario(ctx context.Context, owner Owner, scenarioUUID string) error {
	row, err := f.ownedScenario(ctx, owner, scenarioUUID)
	if err != nil {
		return err
	}
	if err := f.scenarioRepo.Delete(ctx, row.ID); err != nil {
		return NewBusinessError("DELETE_SCENARIO_FAILED", "Failed to delete scenario", err)
	}
	return nil
}

// MarkBaseline flags one scenario as the owner's persistent baseline. The
// previous baseline, if any, is cleared in the same transaction so the owner
// never holds two.
func (f *ScenarioFlowImpl) MarkBaseline(ctx context.Context, owner Owner, scenarioUUID string) (*dto.ScenarioItem, error) {
	row, err := f.ownedScenario(ctx, owner, scenarioUUID)
	if err != nil {
		return nil, err
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.scenarioRepo.ClearBaselineForOwner(txCtx, owner.UserID, owner.SessionID); err != nil {
			return err
		}
		row.IsBaseline = utils.ToPtr(true)
		row.UpdatedAt = utils.UTCNow()
		return f.scenarioRepo.Update(txCtx, row)
	})
	if err != nil {
		return nil, NewBusinessError("MARK_BASELINE_FAILED", "Failed to mark baseline", err)
	}

	item := toScenarioItem(row)
	return &item, nil
}

// CompareScenarios builds comparison rows in request order. The first UUID is
// the baseline for percentage deltas regardless of any stored baseline flag.
// In lenient mode unknown or foreign ids are omitted; strict mode rejects the
// whole request instead.
func (f *ScenarioFlowImpl) CompareScenarios(ctx context.Context, owner Owner, req *dto.CompareScenariosRequest) (*dto.CompareScenariosResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}
	if len(req.ScenarioUUIDs) == 0 {
		return &dto.CompareScenariosResponse{
			Message: "Nothing to compare",
			Rows:    []dto.ComparisonRow{},
		}, nil
	}

	uuids := make([]uuid.UUID, 0, len(req.ScenarioUUIDs))
	for _, s := range req.ScenarioUUIDs {
		id, err := utils.ParseUUID(s)
		if err != nil {
			if req.Strict {
				return nil, NewBusinessError("SCENARIO_NOT_FOUND", "Scenario not found", ErrScenarioNotFound)
			}
			continue
		}
		uuids = append(uuids, id)
	}

	rows, err := f.scenarioRepo.ByUUIDs(ctx, uuids)
	if err != nil {
		return nil, NewBusinessError("COMPARE_SCENARIOS_FAILED", "Failed to load scenarios", err)
	}

	byUUID := make(map[uuid.UUID]*models.SavedScenario, len(rows))
	for _, row := range rows {
		if !ownerMatches(owner, row) {
			continue
		}
		byUUID[row.UUID] = row
	}

	ordered := make([]*models.SavedScenario, 0, len(uuids))
	for _, id := range uuids {
		row, ok := byUUID[id]
		if !ok {
			if req.Strict {
				return nil, NewBusinessError("SCENARIO_NOT_FOUND", "Scenario not found", ErrScenarioNotFound)
			}
			continue
		}
		ordered = append(ordered, row)
	}

	return &dto.CompareScenariosResponse{
		Message: "Comparison built",
		Rows:    buildComparisonRows(ordered),
	}, nil
}

func (f *ScenarioFlowImpl) CreateComparisonSet(ctx context.Context, owner Owner, req *dto.CreateComparisonSetRequest, metadata *ClientMetadata) (*dto.CreateComparisonSetResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}

	scenarios, err := f.ownedScenariosInOrder(ctx, owner, req.ScenarioUUIDs)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, NewBusinessError("COMPARISON_SET_EMPTY", "Comparison set has no scenarios", ErrComparisonSetEmpty)
	}

	ids := make([]int64, 0, len(scenarios))
	for _, s := range scenarios {
		ids = append(ids, int64(s.ID))
	}

	row := models.ComparisonSet{
		UUID:        uuid.New(),
		UserID:      owner.UserID,
		SessionID:   owner.SessionID,
		Name:        req.Name,
		ScenarioIDs: ids,
	}

	if err := f.setRepo.Save(ctx, &row); err != nil {
		return nil, NewBusinessError("CREATE_COMPARISON_SET_FAILED", "Failed to create comparison set", err)
	}

	return &dto.CreateComparisonSetResponse{
		Message: "Comparison set created successfully",
		Set:     toComparisonSetItem(&row, scenarios),
	}, nil
}

func (f *ScenarioFlowImpl) ListComparisonSets(ctx context.Context, owner Owner) (*dto.ListComparisonSetsResponse, error) {
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}

	sets, err := f.setRepo.ListByOwner(ctx, owner.UserID, owner.SessionID)
	if err != nil {
		return nil, NewBusinessError("LIST_COMPARISON_SETS_FAILED", "Failed to list comparison sets", err)
	}

	items := make([]dto.ComparisonSetItem, 0, len(sets))
	for _, set := range sets {
		scenarios, err := f.scenariosByInternalIDs(ctx, set.ScenarioIDs)
		if err != nil {
			return nil, err
		}
		items = append(items, toComparisonSetItem(set, scenarios))
	}

	return &dto.ListComparisonSetsResponse{
		Message: "Comparison sets retrieved",
		Items:   items,
	}, nil
}

func (f *ScenarioFlowImpl) DeleteComparisonSet(ctx context.Context, owner Owner, setUUID string) error {
	set, err := f.ownedSet(ctx, owner, setUUID)
	if err != nil {
		return err
	}
	if err := f.setRepo.Delete(ctx, set.ID); err != nil {
		return NewBusinessError("DELETE_COMPARISON_SET_FAILED", "Failed to delete comparison set", err)
	}
	return nil
}

// CompareSet resolves a stored set and builds comparison rows in the set's
// array order. The first stored scenario is the baseline. Scenarios deleted
// since the set was created are skipped.
func (f *ScenarioFlowImpl) CompareSet(ctx context.Context, owner Owner, setUUID string) (*dto.CompareScenariosResponse, error) {
	set, err := f.ownedSet(ctx, owner, setUUID)
	if err != nil {
		return nil, err
	}

	scenarios, err := f.scenariosByInternalIDs(ctx, set.ScenarioIDs)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, NewBusinessError("COMPARISON_SET_EMPTY", "Comparison set has no scenarios", ErrComparisonSetEmpty)
	}

	return &dto.CompareScenariosResponse{
		Message: "Comparison built",
		Rows:    buildComparisonRows(scenarios),
	}, nil
}

// ownedScenario loads a scenario by UUID and enforces ownership. Foreign rows
// surface as not found so the API never confirms their existence.
func (f *ScenarioFlowImpl) ownedScenario(ctx context.Context, owner Owner, scenarioUUID string) (*models.SavedScenario, error) {
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}
	id, err := utils.ParseUUID(scenarioUUID)
	if err != nil {
		return nil, NewBusinessError("SCENARIO_NOT_FOUND", "Scenario not found", ErrScenarioNotFound)
	}
	row, err := f.scenarioRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("SCENARIO_LOOKUP_FAILED", "Failed to lookup scenario", err)
	}
	if row == nil || !ownerMatches(owner, row) {
		return nil, NewBusinessError("SCENARIO_NOT_FOUND", "Scenario not found", ErrScenarioNotFound)
	}
	return row, nil
}

func (f *ScenarioFlowImpl) ownedSet(ctx context.Context, owner Owner, setUUID string) (*models.ComparisonSet, error) {
	if !owner.Valid() {
		return nil, NewBusinessError("MISSING_OWNER", "a user or session owner is required", ErrOwnerRequired)
	}
	id, err := utils.ParseUUID(setUUID)
	if err != nil {
		return nil, NewBusinessError("COMPARISON_SET_NOT_FOUND", "Comparison set not found", ErrComparisonSetNotFound)
	}
	set, err := f.setRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("COMPARISON_SET_LOOKUP_FAILED", "Failed to lookup comparison set", err)
	}
	if set == nil || !setOwnerMatches(owner, set) {
		return nil, NewBusinessError("COMPARISON_SET_NOT_FOUND", "Comparison set not found", ErrComparisonSetNotFound)
	}
	return set, nil
}

// ownedScenariosInOrder resolves UUIDs to owned scenarios preserving request
// order. Unknown and foreign ids error out; a set must only ever reference
// rows the creator owns.
func (f *ScenarioFlowImpl) ownedScenariosInOrder(ctx context.Context, owner Owner, scenarioUUIDs []string) ([]*models.SavedScenario, error) {
	uuids := make([]uuid.UUID, 0, len(scenarioUUIDs))
	for _, s := range scenarioUUIDs {
		id, err := utils.ParseUUID(s)
		if err != nil {
			return nil, NewBusinessError("SCENARIO_NOT_FOUND", "Scenario not found", ErrScenarioNotFound)
		}
		uuids = append(uuids, id)
	}

	rows, err := f.scenarioRepo.ByUUIDs(ctx, uuids)
	if err != nil {
		return nil, NewBusinessError("SCENARIO_LOOKUP_FAILED", "Failed to lookup scenarios", err)
	}

	byUUID := make(map[uuid.UUID]*models.SavedScenario, len(rows))
	for _, row := range rows {
		byUUID[row.UUID] = row
	}

	ordered := make([]*models.SavedScenario, 0, len(uuids))
	for _, id := range uuids {
		row, ok := byUUID[id]
		if !ok || !ownerMatches(owner, row) {
			return nil, NewBusinessError("SCENARIO_NOT_FOUND", "Scenario not found", ErrScenarioNotFound)
		}
		ordered = append(ordered, row)
	}
	return ordered, nil
}

// scenariosByInternalIDs resolves stored internal ids preserving array order,
// silently skipping rows deleted since the set was created.
func (f *ScenarioFlowImpl) scenariosByInternalIDs(ctx context.Context, ids []int64) ([]*models.SavedScenario, error) {
	out := make([]*models.SavedScenario, 0, len(ids))
	for _, id := range ids {
		row, err := f.scenarioRepo.ByID(ctx, uint(id))
		if err != nil {
			return nil, NewBusinessError("SCENARIO_LOOKUP_FAILED", "Failed to lookup scenario", err)
		}
		if row == nil {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// buildComparisonRows derives cost_per_kwh and savings_delta_pct for each
// scenario. Zero-capacity scenarios get cost_per_kwh 0 rather than Inf; a
// zero-savings baseline pins every delta to 0 for the same reason.
func buildComparisonRows(scenarios []*models.SavedScenario) []dto.ComparisonRow {
	rows := make([]dto.ComparisonRow, 0, len(scenarios))
	var baseSavings float64
	for i, s := range scenarios {
		if i == 0 {
			baseSavings = s.AnnualSavings
		}

		costPerKWh := 0.0
		if s.KWhCapacity > 0 {
			costPerKWh = s.TotalCost / s.KWhCapacity
		}

		// Deltas are only meaningful against a baseline that actually saves
		// money; a zero or negative baseline pins every delta to zero.
		savingsDelta := 0.0
		if i > 0 && baseSavings > 0 {
			savingsDelta = (s.AnnualSavings - baseSavings) / baseSavings * 100
		}

		rows = append(rows, dto.ComparisonRow{
			UUID:            s.UUID.String(),
			Name:            s.Name,
			UseCaseSlug:     s.UseCaseSlug,
			PeakKW:          s.PeakKW,
			KWhCapacity:     s.KWhCapacity,
			TotalCost:       s.TotalCost,
			AnnualSavings:   s.AnnualSavings,
			PaybackYears:    s.PaybackYears,
			CostPerKWh:      costPerKWh,
			SavingsDeltaPct: savingsDelta,
			IsBaseline:      i == 0,
		})
	}
	return rows
}

// ownerMatches reports whether a scenario belongs to the caller. A user owns
// rows with their user id; a session owns anonymous rows with its session id.
func ownerMatches(owner Owner, row *models.SavedScenario) bool {
	if owner.UserID != nil {
		return row.UserID != nil && *row.UserID == *owner.UserID
	}
	if owner.SessionID != nil {
		return row.UserID == nil && row.SessionID != nil && *row.SessionID == *owner.SessionID
	}
	return false
}

func setOwnerMatches(owner Owner, set *models.ComparisonSet) bool {
	if owner.UserID != nil {
		return set.UserID != nil && *set.UserID == *owner.UserID
	}
	if owner.SessionID != nil {
		return set.UserID == nil && set.SessionID != nil && *set.SessionID == *owner.SessionID
	}
	return false
}

func toScenarioItem(row *models.SavedScenario) dto.ScenarioItem {
	return dto.ScenarioItem{
		UUID:          row.UUID.String(),
		Name:          row.Name,
		UseCaseSlug:   row.UseCaseSlug,
		PeakKW:        row.PeakKW,
		KWhCapacity:   row.KWhCapacity,
		TotalCost:     row.TotalCost,
		AnnualSavings: row.AnnualSavings,
		PaybackYears:  row.PaybackYears,
		IsBaseline:    utils.IsTrue(row.IsBaseline),
		CreatedAt:     row.CreatedAt.Format(time.RFC3339),
	}
}

func toComparisonSetItem(set *models.ComparisonSet, scenarios []*models.SavedScenario) dto.ComparisonSetItem {
	uuids := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		uuids = append(uuids, s.UUID.String())
	}
	return dto.ComparisonSetItem{
		UUID:          set.UUID.String(),
		Name:          set.Name,
		ScenarioUUIDs: uuids,
		CreatedAt:     set.CreatedAt.Format(time.RFC3339),
	}
}
