package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"limeplan/entities"
	"limeplan/pkg/ai"
	"limeplan/pkg/liming"
	parcelrepo "limeplan/pkg/parcel/repository"
	"limeplan/pkg/plan"
	planrepo "limeplan/pkg/plan/repository"
	"limeplan/pkg/plan/service"
	"limeplan/pkg/plan/types"
	"limeplan/pkg/product"
	"limeplan/pkg/reftables"
	samplerepo "limeplan/pkg/sample/repository"
	samplesvc "limeplan/pkg/sample/serviceImp"
	"limeplan/pkg/soil"
)

// productCatalog is the part of the product service plans depend on.
type productCatalog interface {
	Active() ([]liming.Product, error)
	Resolve(ids []uint) (map[uint]liming.Product, error)
}

type Deps struct {
	Plans    planrepo.PlanRepository
	Parcels  parcelrepo.ParcelRepository
	Samples  samplerepo.SampleRepository
	Products productCatalog
	Tables   *reftables.Set
	LLM      ai.Client
	Log      *zap.Logger
	// HorizonYears is the default planning horizon.
	HorizonYears int
}

type PlanSvc struct {
	plans    planrepo.PlanRepository
	parcels  parcelrepo.ParcelRepository
	samples  samplerepo.SampleRepository
	products productCatalog
	tables   *reftables.Set
	llm      ai.Client
	log      *zap.Logger
	horizon  int
	now      func() time.Time
	locks    keyedMutex
}

var _ service.PlanService = (*PlanSvc)(nil)

func NewPlanService(d Deps) *PlanSvc {
	horizon := d.HorizonYears
	if horizon <= 0 {
		horizon = liming.DefaultHorizonYears
	}
	llm := d.LLM
	if llm == nil {
		llm = ai.NewMock()
	}
	return &PlanSvc{
		plans:    d.Plans,
		parcels:  d.Parcels,
		samples:  d.Samples,
		products: d.Products,
		tables:   d.Tables,
		llm:      llm,
		log:      d.Log.Named("plan"),
		horizon:  horizon,
		now:      time.Now,
		locks:    keyedMutex{m: map[string]*sync.Mutex{}},
	}
}

// keyedMutex serializes work per plan (and per parcel for generation) within
// this process. The version check in the repository covers other processes.
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.m[key]
	if !ok {
		l = &sync.Mutex{}
		k.m[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// ------------------------------------------------------------------
// Generation
// ------------------------------------------------------------------

func (s *PlanSvc) GeneratePlan(ctx context.Context, uid string, parcelID uint, opts types.GenerateOptions) (*entities.Plan, error) {
	defer s.locks.lock(fmt.Sprintf("parcel:%d", parcelID))()

	parcel, err := s.parcels.FindByID(parcelID, uid)
	if err != nil {
		return nil, err
	}
	smp, err := s.sampleFor(parcelID, opts.SampleID)
	if err != nil {
		return nil, err
	}
	st, err := soil.ParseSoilType(parcel.SoilType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plan.ErrInvalidInput, err)
	}
	lu, err := liming.ParseLandUse(parcel.LandUse)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plan.ErrInvalidInput, err)
	}
	report, err := s.tables.Classifier.Classify(samplesvc.ToSoilSample(smp), st)
	if err != nil {
		return nil, err
	}

	in := liming.GenerateInput{
		CurrentPH:    smp.PH,
		TargetPH:     opts.TargetPH,
		SoilType:     st,
		LandUse:      lu,
		Area:         parcel.AreaHa,
		Magnesium:    report.MagnesiumClass(),
		StartYear:    opts.StartYear,
		HorizonYears: opts.HorizonYears,
	}
	if in.StartYear == 0 {
		in.StartYear = s.now().Year()
	}
	if in.HorizonYears == 0 {
		in.HorizonYears = s.horizon
	}
	if opts.StartSeason != "" {
		if in.StartSeason, err = liming.ParseSeason(opts.StartSeason); err != nil {
			return nil, fmt.Errorf("%w: %v", plan.ErrInvalidInput, err)
		}
	}
	if in.Products, err = s.products.Active(); err != nil {
		return nil, err
	}

	res, err := s.tables.Lime.Generate(in)
	if err != nil {
		return nil, err
	}

	p := &entities.Plan{
		PublicID:      uuid.NewString(),
		ParcelID:      parcel.ParcelID,
		UserID:        uid,
		Status:        entities.PlanDraft,
		Version:       1,
		TablesVersion: s.tables.Version,
		SampleID:      smp.SampleID,
		SampleDate:    smp.Date,
		AnchorPH:      smp.PH,
		TargetPH:      res.TargetPH,
		SoilType:      string(st),
		LandUse:       string(lu),
		AreaHa:        parcel.AreaHa,
		Magnesium:     smp.Magnesium,
		Requirement:   res.Requirement,
		Warnings:      res.Warnings,
	}
	applyTrajectory(p, res.Applications)
	p.SummaryMD = s.llm.SummarizePlan(ctx, parcel, p)

	entry := &entities.PlanLog{
		ParcelID: parcel.ParcelID,
		UserID:   uid,
		Action:   "generate",
		Detail: fmt.Sprintf("sample %d pH %.2f -> target %.1f, %d applications",
			smp.SampleID, smp.PH, res.TargetPH, len(res.Applications)),
		Version: p.Version,
	}
	discarded, err := s.plans.CreateDraft(ctx, p, entry)
	if err != nil {
		return nil, err
	}
	s.log.Info("plan generated",
		zap.Uint("plan_id", p.PlanID),
		zap.Uint("parcel_id", parcel.ParcelID),
		zap.String("action", "generate"),
		zap.Int("version", p.Version),
		zap.Int("applications", len(p.Applications)),
		zap.Uints("discarded_drafts", discarded),
		zap.Int("warnings", len(p.Warnings)))
	return p, nil
}

func (s *PlanSvc) sampleFor(parcelID, sampleID uint) (*entities.SoilSample, error) {
	if sampleID != 0 {
		return s.samples.FindByID(parcelID, sampleID)
	}
	return s.samples.Latest(parcelID)
}

// ------------------------------------------------------------------
// Mutations
// ------------------------------------------------------------------

// edit changes the schedule of a loaded plan and describes the change for the
// plan log.
type edit func(p *entities.Plan, apps []liming.Application) ([]liming.Application, string, error)

// mutate runs one change through the full pipeline: version check, edit,
// resequence, recalculation from the anchor, advice, totals and a single
// versioned save. Nothing is written when any step fails.
func (s *PlanSvc) mutate(ctx context.Context, uid string, planID uint, version int, action string, fn edit) (*entities.Plan, error) {
	defer s.locks.lock(fmt.Sprintf("plan:%d", planID))()

	p, err := s.plans.FindByID(ctx, planID, uid)
	if err != nil {
		return nil, err
	}
	if p.Version != version {
		return nil, fmt.Errorf("%w: plan %d is at version %d, not %d", plan.ErrVersionConflict, planID, p.Version, version)
	}
	loaded, err := toLimingApps(p.Applications)
	if err != nil {
		return nil, err
	}
	// stored rows that disagree with chronology are repaired before the edit
	apps, conflicts := liming.Resequence(loaded)
	apps, detail, err := fn(p, apps)
	if err != nil {
		return nil, err
	}
	apps, after := liming.Resequence(apps)
	conflicts = append(conflicts, after...)

	st := soil.SoilType(p.SoilType)
	for _, c := range conflicts {
		s.log.Warn("sequence conflict repaired", zap.Uint("plan_id", planID), zap.Error(c.Err()))
	}
	apps = s.tables.Lime.Recalculate(apps, p.AnchorPH, st)
	apps = s.tables.Lime.Annotate(apps, p.TargetPH, st, s.magnesiumClass(p))
	applyTrajectory(p, apps)
	p.Warnings = s.trajectoryWarnings(p, apps)

	parcel, _ := s.parcels.FindByID(p.ParcelID, uid)
	p.SummaryMD = s.llm.SummarizePlan(ctx, parcel, p)

	entry := &entities.PlanLog{ParcelID: p.ParcelID, UserID: uid, Action: action, Detail: detail}
	for _, c := range conflicts {
		entry.Conflicts = append(entry.Conflicts, c.Err().Error())
	}
	if err := s.plans.SaveTrajectory(ctx, p, version, entry); err != nil {
		if errors.Is(err, plan.ErrVersionConflict) {
			s.log.Info("plan mutation lost version race", zap.Uint("plan_id", planID), zap.String("action", action), zap.Int("version", version))
		}
		return nil, err
	}
	s.log.Info("plan updated",
		zap.Uint("plan_id", p.PlanID),
		zap.String("action", action),
		zap.Int("version", p.Version),
		zap.Int("applications", len(p.Applications)),
		zap.Int("conflicts", len(conflicts)))
	return p, nil
}

// magnesiumClass is derived from the stored measurement each time so a new
// table version reclassifies old plans.
func (s *PlanSvc) magnesiumClass(p *entities.Plan) soil.NutrientClass {
	if p.Magnesium == nil {
		return soil.ClassUnknown
	}
	c, _, err := s.tables.Classifier.ClassifyNutrient(soil.Magnesium, soil.SoilType(p.SoilType), *p.Magnesium)
	if err != nil {
		return soil.ClassUnknown
	}
	return c
}

func (s *PlanSvc) trajectoryWarnings(p *entities.Plan, apps []liming.Application) []string {
	var out []string
	st := soil.SoilType(p.SoilType)
	if len(apps) == 0 {
		if !liming.TargetReached(p.AnchorPH, p.TargetPH) {
			out = append(out, fmt.Sprintf("No applications are scheduled; pH %.2f stays below target %.1f.", p.AnchorPH, p.TargetPH))
		}
		return out
	}
	last := apps[len(apps)-1]
	if !liming.TargetReached(last.PhAfter, p.TargetPH) {
		out = append(out, fmt.Sprintf("Final pH %.2f is below target %.1f.", last.PhAfter, p.TargetPH))
	}
	if ceiling := s.tables.Lime.Ceiling(st); last.PhAfter > ceiling+0.05 {
		out = append(out, fmt.Sprintf("Final pH %.2f exceeds the %.1f reference ceiling for %s soil; the schedule over-applies lime.", last.PhAfter, ceiling, st))
	}
	if span := last.Year - apps[0].Year + 1; span > s.horizon {
		out = append(out, fmt.Sprintf("The schedule spans %d years, beyond the %d year planning horizon.", span, s.horizon))
	}
	return out
}

// doses resolves product inputs against the catalog and copies each
// product's composition and price into the dose.
func (s *PlanSvc) doses(in []types.ProductDoseInput) ([]liming.ProductDose, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one product is required", plan.ErrInvalidInput)
	}
	ids := make([]uint, 0, len(in))
	for _, d := range in {
		if !(d.DosePerArea > 0) {
			return nil, fmt.Errorf("%w: dose for product %d must be positive", plan.ErrInvalidInput, d.ProductID)
		}
		ids = append(ids, d.ProductID)
	}
	catalog, err := s.products.Resolve(ids)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", plan.ErrProductNotFound, err)
		}
		return nil, err
	}
	out := make([]liming.ProductDose, 0, len(in))
	for _, d := range in {
		out = append(out, catalog[d.ProductID].Dose(d.DosePerArea))
	}
	return out, nil
}

func slot(year int, season string) (liming.Season, error) {
	if year < 1900 || year > 2200 {
		return 0, fmt.Errorf("%w: year %d", plan.ErrInvalidInput, year)
	}
	sn, err := liming.ParseSeason(season)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", plan.ErrInvalidInput, err)
	}
	return sn, nil
}

func (s *PlanSvc) InsertApplication(ctx context.Context, uid string, planID uint, version int, in types.ApplicationInput) (*entities.Plan, error) {
	season, err := slot(in.Year, in.Season)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	doses, err := s.doses(in.Products)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, uid, planID, version, "insert", func(_ *entities.Plan, apps []liming.Application) ([]liming.Application, string, error) {
		if len(apps) >= liming.MaxPlanApplications {
			return nil, "", fmt.Errorf("%w: a plan holds at most %d applications", plan.ErrInvalidInput, liming.MaxPlanApplications)
		}
		out, seq := liming.Insert(apps, liming.Application{Year: in.Year, Season: season, Status: status, Products: doses})
		return out, fmt.Sprintf("inserted %d %s as #%d", in.Year, season, seq), nil
	})
}

func (s *PlanSvc) UpdateApplication(ctx context.Context, uid string, planID, applicationID uint, version int, patch types.ApplicationPatch) (*entities.Plan, error) {
	if !patch.Structural() {
		if patch.Status == nil {
			return nil, fmt.Errorf("%w: empty patch", plan.ErrInvalidInput)
		}
		return s.SetApplicationStatus(ctx, uid, planID, applicationID, version, *patch.Status)
	}
	var (
		status *liming.Status
		doses  []liming.ProductDose
	)
	if patch.Status != nil {
		st, err := parseStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}
	if patch.Products != nil {
		d, err := s.doses(*patch.Products)
		if err != nil {
			return nil, err
		}
		doses = d
	}
	return s.mutate(ctx, uid, planID, version, "update", func(_ *entities.Plan, apps []liming.Application) ([]liming.Application, string, error) {
		i, err := findApp(apps, applicationID)
		if err != nil {
			return nil, "", err
		}
		var changes []string
		if doses != nil {
			apps[i].Products = doses
			changes = append(changes, "products")
		}
		if status != nil {
			apps[i].Status = *status
			changes = append(changes, "status "+string(*status))
		}
		cur, seq := apps[i], apps[i].Seq
		if patch.Year == nil && patch.Season == nil {
			return apps, fmt.Sprintf("updated #%d: %s", seq, strings.Join(changes, ", ")), nil
		}
		year, season := cur.Year, cur.Season.String()
		if patch.Year != nil {
			year = *patch.Year
		}
		if patch.Season != nil {
			season = *patch.Season
		}
		sn, err := slot(year, season)
		if err != nil {
			return nil, "", err
		}
		out, newSeq, err := liming.Move(apps, seq, year, sn)
		if err != nil {
			return nil, "", err
		}
		changes = append(changes, fmt.Sprintf("moved to %d %s as #%d", year, sn, newSeq))
		return out, fmt.Sprintf("updated #%d: %s", seq, strings.Join(changes, ", ")), nil
	})
}

func (s *PlanSvc) DeleteApplication(ctx context.Context, uid string, planID, applicationID uint, version int) (*entities.Plan, error) {
	return s.mutate(ctx, uid, planID, version, "delete", func(_ *entities.Plan, apps []liming.Application) ([]liming.Application, string, error) {
		i, err := findApp(apps, applicationID)
		if err != nil {
			return nil, "", err
		}
		a := apps[i]
		out, err := liming.Delete(apps, a.Seq)
		if err != nil {
			return nil, "", err
		}
		return out, fmt.Sprintf("deleted #%d (%d %s)", a.Seq, a.Year, a.Season), nil
	})
}

// SetApplicationStatus records ordering and spreading progress. The
// trajectory is recomputed like any other change and comes out identical.
func (s *PlanSvc) SetApplicationStatus(ctx context.Context, uid string, planID, applicationID uint, version int, status string) (*entities.Plan, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, uid, planID, version, "status", func(_ *entities.Plan, apps []liming.Application) ([]liming.Application, string, error) {
		i, err := findApp(apps, applicationID)
		if err != nil {
			return nil, "", err
		}
		from := apps[i].Status
		apps[i].Status = st
		return apps, fmt.Sprintf("#%d %s -> %s", apps[i].Seq, from, st), nil
	})
}

func (s *PlanSvc) Approve(ctx context.Context, uid string, planID uint, version int) (*entities.Plan, error) {
	return s.mutate(ctx, uid, planID, version, "approve", func(p *entities.Plan, apps []liming.Application) ([]liming.Application, string, error) {
		if p.Status == entities.PlanApproved {
			return nil, "", fmt.Errorf("%w: plan %d is already approved", plan.ErrInvalidInput, p.PlanID)
		}
		now := s.now()
		p.Status = entities.PlanApproved
		p.ApprovedAt = &now
		return apps, fmt.Sprintf("approved with %d applications", len(apps)), nil
	})
}

// ------------------------------------------------------------------
// Reads
// ------------------------------------------------------------------

func (s *PlanSvc) Get(ctx context.Context, uid string, planID uint) (*entities.Plan, error) {
	return s.plans.FindByID(ctx, planID, uid)
}

func (s *PlanSvc) ListByParcel(ctx context.Context, uid string, parcelID uint) ([]entities.Plan, error) {
	if _, err := s.parcels.FindByID(parcelID, uid); err != nil {
		return nil, err
	}
	return s.plans.ListByParcel(ctx, parcelID, uid)
}

func (s *PlanSvc) Logs(ctx context.Context, uid string, planID uint) ([]entities.PlanLog, error) {
	if _, err := s.plans.FindByID(ctx, planID, uid); err != nil {
		return nil, err
	}
	return s.plans.Logs(ctx, planID)
}
