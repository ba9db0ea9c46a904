package serviceImp

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"limeplan/entities"
	"limeplan/pkg/parcel"
	parcelRepoImp "limeplan/pkg/parcel/repositoryImp"
	"limeplan/pkg/reftables"
	"limeplan/pkg/sample"
	"limeplan/pkg/sample/repositoryImp"
	"limeplan/pkg/sample/service"
	"limeplan/pkg/soil"
)

func setup(t *testing.T) (service.SampleService, *entities.Parcel) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sample.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Parcel{}, &entities.SoilSample{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	set, err := reftables.Load(reftables.Options{})
	require.NoError(t, err)

	parcels := parcelRepoImp.New(db)
	p := &entities.Parcel{UserID: "u1", Name: "A", AreaHa: 2, SoilType: "medium", LandUse: "arable"}
	require.NoError(t, parcels.Create(p))

	svc := NewSampleService(repositoryImp.New(db), parcels, set.Classifier)
	svc.(*sampleSvc).now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, p
}

func ptr(v float64) *float64 { return &v }

func TestCreateAndClassify(t *testing.T) {
	svc, p := setup(t)

	s, err := svc.Create("u1", &entities.SoilSample{ParcelID: p.ParcelID, PH: 5.2, Magnesium: ptr(4), Potassium: ptr(30)})
	require.NoError(t, err)
	assert.NotZero(t, s.SampleID)
	assert.Equal(t, 2026, s.Date.Year())

	rep, err := svc.Classify("u1", p.ParcelID, s.SampleID)
	require.NoError(t, err)
	assert.Equal(t, soil.Medium, rep.SoilType)
	assert.Equal(t, soil.ClassB, rep.MagnesiumClass())
	require.Len(t, rep.Nutrients, 2)
	assert.Equal(t, soil.Potassium, rep.Nutrients[0].Nutrient)
	assert.Equal(t, "E", rep.Nutrients[0].ClassLabel)
}

func TestCreateRejectsInvalidMeasurement(t *testing.T) {
	svc, p := setup(t)

	_, err := svc.Create("u1", &entities.SoilSample{ParcelID: p.ParcelID, PH: 15})
	assert.ErrorIs(t, err, soil.ErrInvalidMeasurement)
	_, err = svc.Create("u1", &entities.SoilSample{ParcelID: p.ParcelID, PH: 6, Sulfur: ptr(-1)})
	assert.ErrorIs(t, err, soil.ErrInvalidMeasurement)

	list, err := svc.List("u1", p.ParcelID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSamplesAreScopedToOwner(t *testing.T) {
	svc, p := setup(t)
	_, err := svc.Create("intruder", &entities.SoilSample{ParcelID: p.ParcelID, PH: 6})
	assert.ErrorIs(t, err, parcel.ErrNotFound)

	_, err = svc.Classify("u1", p.ParcelID, 999)
	assert.ErrorIs(t, err, sample.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc, p := setup(t)
	for _, d := range []string{"2024-04-01", "2025-09-15", "2023-10-10"} {
		date, _ := time.Parse("2006-01-02", d)
		_, err := svc.Create("u1", &entities.SoilSample{ParcelID: p.ParcelID, PH: 6, Date: date})
		require.NoError(t, err)
	}
	list, err := svc.List("u1", p.ParcelID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 2025, list[0].Date.Year())
	assert.Equal(t, 2023, list[2].Date.Year())
}
