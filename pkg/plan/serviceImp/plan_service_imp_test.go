package serviceImp

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"limeplan/database"
	"limeplan/entities"
	"limeplan/pkg/liming"
	"limeplan/pkg/parcel"
	parcelrepo "limeplan/pkg/parcel/repositoryImp"
	"limeplan/pkg/plan"
	planrepo "limeplan/pkg/plan/repositoryImp"
	"limeplan/pkg/plan/types"
	productrepo "limeplan/pkg/product/repositoryImp"
	productsvc "limeplan/pkg/product/serviceImp"
	"limeplan/pkg/reftables"
	samplerepo "limeplan/pkg/sample/repositoryImp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

type fixture struct {
	svc     *PlanSvc
	db      *gorm.DB
	parcel  *entities.Parcel
	samples interface {
		Create(*entities.SoilSample) error
	}
}

var ctx = context.Background()

func newFixture(t *testing.T, seed bool) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "plan.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	set, err := reftables.Load(reftables.Options{})
	require.NoError(t, err)

	products := productsvc.NewProductService(productrepo.New(db), zap.NewNop())
	if seed {
		sample, err := reftables.SampleProducts()
		require.NoError(t, err)
		_, err = products.Seed(sample)
		require.NoError(t, err)
	}

	parcels := parcelrepo.New(db)
	p := &entities.Parcel{UserID: "u1", Name: "North", AreaHa: 2, SoilType: "medium", LandUse: "arable"}
	require.NoError(t, parcels.Create(p))

	samples := samplerepo.New(db)
	svc := NewPlanService(Deps{
		Plans:    planrepo.New(db),
		Parcels:  parcels,
		Samples:  samples,
		Products: products,
		Tables:   set,
		Log:      zap.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, db: db, parcel: p, samples: samples}
}

func (f *fixture) addSample(t *testing.T, ph float64) *entities.SoilSample {
	t.Helper()
	s := &entities.SoilSample{ParcelID: f.parcel.ParcelID, PH: ph, Date: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.samples.Create(s))
	return s
}

func (f *fixture) generate(t *testing.T) *entities.Plan {
	t.Helper()
	f.addSample(t, 4.1)
	p, err := f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{})
	require.NoError(t, err)
	return p
}

func requireDense(t *testing.T, apps []entities.Application) {
	t.Helper()
	for i, a := range apps {
		require.Equal(t, i+1, a.Seq)
		if i > 0 {
			prev := apps[i-1]
			ps, _ := liming.ParseSeason(prev.Season)
			cs, _ := liming.ParseSeason(a.Season)
			require.True(t, prev.Year < a.Year || (prev.Year == a.Year && ps <= cs), "applications out of order at %d", i)
		}
	}
}

func TestGeneratePlan(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)

	assert.Equal(t, entities.PlanDraft, p.Status)
	assert.Equal(t, 1, p.Version)
	assert.Len(t, p.PublicID, 36)
	assert.Equal(t, "2025.2", p.TablesVersion)
	assert.Equal(t, 4.1, p.AnchorPH)
	assert.Equal(t, 6.5, p.TargetPH)
	assert.InDelta(t, 11400, p.Requirement, 1e-6)
	assert.NotEmpty(t, p.SummaryMD)

	require.Len(t, p.Applications, 6)
	requireDense(t, p.Applications)
	assert.Equal(t, 2026, p.Applications[0].Year)
	assert.Equal(t, "spring", p.Applications[0].Season)
	assert.InDelta(t, 4.6, p.Applications[0].PhAfter, 1e-6)
	assert.InDelta(t, 6.5, p.FinalPH, 1e-6)
	assert.Equal(t, "Burnt lime 90", p.Applications[0].Products[0].Name)
	assert.Equal(t, 90.0, p.Applications[0].Products[0].NeutralizingPct)

	stored, err := f.svc.Get(ctx, "u1", p.PlanID)
	require.NoError(t, err)
	require.Len(t, stored.Applications, 6)
	assert.Equal(t, p.Applications[5].ApplicationID, stored.Applications[5].ApplicationID)
	assert.Len(t, stored.Applications[0].Products, 1)
	assert.True(t, stored.TotalCost.Equal(p.TotalCost))

	_, err = f.svc.Get(ctx, "someone-else", p.PlanID)
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestGeneratePlanAlreadyAtTarget(t *testing.T) {
	f := newFixture(t, true)
	f.addSample(t, 7.0)

	p, err := f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{})
	require.NoError(t, err)
	assert.Empty(t, p.Applications)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "no liming is needed")
	assert.Equal(t, 7.0, p.FinalPH)
}

func TestGeneratePlanErrors(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{})
	assert.Error(t, err, "parcel without samples")

	f.addSample(t, 4.1)
	_, err = f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{})
	assert.ErrorIs(t, err, liming.ErrNoActiveProducts)

	_, err = f.svc.GeneratePlan(ctx, "u2", f.parcel.ParcelID, types.GenerateOptions{})
	assert.ErrorIs(t, err, parcel.ErrNotFound)

	_, err = f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{StartSeason: "monsoon"})
	assert.ErrorIs(t, err, plan.ErrInvalidInput)
}

func TestRegenerateDiscardsDraftOnly(t *testing.T) {
	f := newFixture(t, true)
	first := f.generate(t)

	second, err := f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{StartYear: 2027})
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "u1", first.PlanID)
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)

	_, err = f.svc.Approve(ctx, "u1", second.PlanID, second.Version)
	require.NoError(t, err)
	_, err = f.svc.GeneratePlan(ctx, "u1", f.parcel.ParcelID, types.GenerateOptions{})
	require.NoError(t, err)

	plans, err := f.svc.ListByParcel(ctx, "u1", f.parcel.ParcelID)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	var count int64
	require.NoError(t, f.db.Model(&entities.Application{}).Count(&count).Error)
	assert.EqualValues(t, 12, count)
}

func TestDeleteApplicationRecalculatesLaterOnes(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)
	second := p.Applications[1]
	third := p.Applications[2]

	out, err := f.svc.DeleteApplication(ctx, "u1", p.PlanID, second.ApplicationID, p.Version)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Version)
	require.Len(t, out.Applications, 5)
	requireDense(t, out.Applications)

	// the former third application now follows the first, two years later
	moved := out.Applications[1]
	assert.Equal(t, third.ApplicationID, moved.ApplicationID)
	assert.InDelta(t, 4.6-2*0.2, moved.PhBefore, 1e-6)
	assert.Less(t, out.FinalPH, p.FinalPH)
	assert.Contains(t, out.Warnings[0], "below target")

	stored, err := f.svc.Get(ctx, "u1", p.PlanID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	require.Len(t, stored.Applications, 5)
	assert.InDelta(t, moved.PhBefore, stored.Applications[1].PhBefore, 1e-9)

	logs, err := f.svc.Logs(ctx, "u1", p.PlanID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "generate", logs[0].Action)
	assert.Equal(t, "delete", logs[1].Action)
	assert.Equal(t, 2, logs[1].Version)
}

func TestInsertApplication(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)

	out, err := f.svc.InsertApplication(ctx, "u1", p.PlanID, 1, types.ApplicationInput{
		Year: 2026, Season: "autumn",
		Products: []types.ProductDoseInput{{ProductID: 3, DosePerArea: 2000}},
	})
	require.NoError(t, err)
	require.Len(t, out.Applications, 7)
	requireDense(t, out.Applications)

	ins := out.Applications[1]
	assert.Equal(t, 2026, ins.Year)
	assert.Equal(t, "autumn", ins.Season)
	assert.Equal(t, "planned", ins.Status)
	assert.NotZero(t, ins.ApplicationID)
	assert.InDelta(t, 4.6, ins.PhBefore, 1e-6)
	assert.InDelta(t, 1000, ins.NeutralizingPerArea, 1e-6)
	assert.InDelta(t, 4.5+1600.0/3000*0.5, ins.PhAfter, 1e-6)
	assert.InDelta(t, ins.PhAfter-0.2, out.Applications[2].PhBefore, 1e-6)
	assert.Equal(t, "Ground limestone 50", ins.Products[0].Name)
	assert.InDelta(t, 4000, ins.TotalMass, 1e-6)

	_, err = f.svc.InsertApplication(ctx, "u1", p.PlanID, 2, types.ApplicationInput{
		Year: 2027, Season: "spring", Products: []types.ProductDoseInput{{ProductID: 99, DosePerArea: 100}},
	})
	assert.ErrorIs(t, err, plan.ErrProductNotFound)

	_, err = f.svc.InsertApplication(ctx, "u1", p.PlanID, 2, types.ApplicationInput{
		Year: 2027, Season: "spring", Products: []types.ProductDoseInput{{ProductID: 3, DosePerArea: 0}},
	})
	assert.ErrorIs(t, err, plan.ErrInvalidInput)

	_, err = f.svc.InsertApplication(ctx, "u1", p.PlanID, 2, types.ApplicationInput{
		Year: 2027, Season: "winter", Products: []types.ProductDoseInput{{ProductID: 3, DosePerArea: 10}},
	})
	assert.ErrorIs(t, err, plan.ErrInvalidInput)
}

func TestUpdateApplicationMovesAndReprices(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)
	last := p.Applications[5]
	year, season := 2026, "summer"

	out, err := f.svc.UpdateApplication(ctx, "u1", p.PlanID, last.ApplicationID, 1, types.ApplicationPatch{
		Year: &year, Season: &season,
		Products: &[]types.ProductDoseInput{{ProductID: 4, DosePerArea: 1000}},
	})
	require.NoError(t, err)
	require.Len(t, out.Applications, 6)
	requireDense(t, out.Applications)

	moved := out.Applications[1]
	assert.Equal(t, last.ApplicationID, moved.ApplicationID)
	assert.Equal(t, "summer", moved.Season)
	assert.InDelta(t, 300, moved.NeutralizingPerArea, 1e-6)
	assert.InDelta(t, 180, moved.SecondaryPerArea, 1e-6)
	assert.Equal(t, "Dolomite 30/18", moved.Products[0].Name)

	_, err = f.svc.UpdateApplication(ctx, "u1", p.PlanID, 12345, 2, types.ApplicationPatch{Year: &year})
	assert.ErrorIs(t, err, liming.ErrApplicationNotFound)
	_, err = f.svc.UpdateApplication(ctx, "u1", p.PlanID, last.ApplicationID, 2, types.ApplicationPatch{})
	assert.ErrorIs(t, err, plan.ErrInvalidInput)
}

func TestSetApplicationStatusKeepsTrajectory(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)

	out, err := f.svc.SetApplicationStatus(ctx, "u1", p.PlanID, p.Applications[0].ApplicationID, 1, "ordered")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Version)
	assert.Equal(t, "ordered", out.Applications[0].Status)
	for i := range p.Applications {
		assert.InDelta(t, p.Applications[i].PhAfter, out.Applications[i].PhAfter, 1e-9)
	}

	applied := "applied"
	out, err = f.svc.UpdateApplication(ctx, "u1", p.PlanID, p.Applications[0].ApplicationID, 2, types.ApplicationPatch{Status: &applied})
	require.NoError(t, err)
	assert.Equal(t, "applied", out.Applications[0].Status)

	_, err = f.svc.SetApplicationStatus(ctx, "u1", p.PlanID, p.Applications[0].ApplicationID, 3, "spread")
	assert.ErrorIs(t, err, plan.ErrInvalidInput)
}

func TestApprove(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)

	out, err := f.svc.Approve(ctx, "u1", p.PlanID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.PlanApproved, out.Status)
	require.NotNil(t, out.ApprovedAt)
	assert.Equal(t, 2, out.Version)

	_, err = f.svc.Approve(ctx, "u1", p.PlanID, 2)
	assert.ErrorIs(t, err, plan.ErrInvalidInput)

	// approved plans still accept edits
	_, err = f.svc.DeleteApplication(ctx, "u1", p.PlanID, p.Applications[5].ApplicationID, 2)
	require.NoError(t, err)
}

func TestStaleVersionIsRejected(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)

	_, err := f.svc.DeleteApplication(ctx, "u1", p.PlanID, p.Applications[0].ApplicationID, 1)
	require.NoError(t, err)
	_, err = f.svc.DeleteApplication(ctx, "u1", p.PlanID, p.Applications[1].ApplicationID, 1)
	assert.ErrorIs(t, err, plan.ErrVersionConflict)

	stored, err := f.svc.Get(ctx, "u1", p.PlanID)
	require.NoError(t, err)
	assert.Len(t, stored.Applications, 5)
}

func TestConcurrentMutationsSingleWinner(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.InsertApplication(ctx, "u1", p.PlanID, 1, types.ApplicationInput{
				Year: 2027 + i%3, Season: "summer",
				Products: []types.ProductDoseInput{{ProductID: 3, DosePerArea: 500}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, plan.ErrVersionConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	stored, err := f.svc.Get(ctx, "u1", p.PlanID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Len(t, stored.Applications, 7)
	requireDense(t, stored.Applications)
}

func TestMutationRepairsStoredSequenceConflict(t *testing.T) {
	f := newFixture(t, true)
	p := f.generate(t)
	// two rows claiming the same sequence number
	require.NoError(t, f.db.Model(&entities.Application{}).
		Where("application_id = ?", p.Applications[2].ApplicationID).Update("seq", 2).Error)

	out, err := f.svc.SetApplicationStatus(ctx, "u1", p.PlanID, p.Applications[0].ApplicationID, 1, "ordered")
	require.NoError(t, err)
	requireDense(t, out.Applications)

	logs, err := f.svc.Logs(ctx, "u1", p.PlanID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Len(t, logs[1].Conflicts, 1)
	assert.Contains(t, logs[1].Conflicts[0], "sequence 2")
}
