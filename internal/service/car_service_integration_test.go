package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ardakaya/car-market/internal/broker"
	"github.com/ardakaya/car-market/internal/models"
	"github.com/ardakaya/car-market/internal/repository"
	"github.com/ardakaya/car-market/internal/service"
	"github.com/ardakaya/car-market/internal/testutil"
	"github.com/ardakaya/car-market/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CarServiceIntegrationTestSuite struct {
	suite.Suite
	testDB       *testutil.TestDatabase
	testRedis    *testutil.TestRedis
	carBroker    *broker.RedisCarBroker
	carService   *service.CarService
	adminService *service.AdminService
	owner        *models.User
}

func (s *CarServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	var err error
	s.carBroker, err = broker.NewRedisCarBroker(s.testRedis.URL)
	require.NoError(s.T(), err)

	userRepo := repository.NewUserRepository(s.testDB.DB)
	carRepo := repository.NewCarRepository(s.testDB.DB)

	s.carService = service.NewCarService(carRepo, s.carBroker)
	s.adminService = service.NewAdminService(userRepo, s.carService)
}

func (s *CarServiceIntegrationTestSuite) TearDownSuite() {
	s.carBroker.Close()
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *CarServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()

	owner, err := testutil.DefaultTestUser()
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.testDB.DB.Create(owner).Error)
	s.owner = owner
}

func (s *CarServiceIntegrationTestSuite) TestCreateCarStampsOwner() {
	car, err := s.carService.CreateCar(s.owner.ID, "Toyota", "Camry", 2020, 25000, 15000)

	require.NoError(s.T(), err)
	assert.NotZero(s.T(), car.ID)
	assert.Equal(s.T(), s.owner.ID, car.OwnerID)
}

func (s *CarServiceIntegrationTestSuite) TestListCarsPopulatesCache() {
	_, err := s.carService.CreateCar(s.owner.ID, "Honda", "Civic", 2019, 18000, 40000)
	require.NoError(s.T(), err)

	// First read misses the cache and populates it
	cars, err := s.carService.ListCars()
	require.NoError(s.T(), err)
	assert.Len(s.T(), cars, 1)

	cached, ok, err := s.carBroker.GetCachedCars()
	require.NoError(s.T(), err)
	assert.True(s.T(), ok, "Listing should populate the cache")
	assert.Len(s.T(), cached, 1)
}

func (s *CarServiceIntegrationTestSuite) TestMutationsInvalidateCache() {
	car, err := s.carService.CreateCar(s.owner.ID, "Honda", "Civic", 2019, 18000, 40000)
	require.NoError(s.T(), err)

	_, err = s.carService.ListCars()
	require.NoError(s.T(), err)

	_, err = s.carService.UpdatePrice(car.ID, 17000)
	require.NoError(s.T(), err)

	_, ok, err := s.carBroker.GetCachedCars()
	require.NoError(s.T(), err)
	assert.False(s.T(), ok, "Price update must drop the cached listing")
}

func (s *CarServiceIntegrationTestSuite) TestMutationsPublishEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := s.carBroker.Subscribe(ctx)
	require.NoError(s.T(), err)

	car, err := s.carService.CreateCar(s.owner.ID, "Volvo", "240", 1990, 5000, 300000)
	require.NoError(s.T(), err)

	select {
	case event := <-events:
		assert.Equal(s.T(), broker.EventCarCreated, event.Action)
		assert.Equal(s.T(), car.ID, event.CarID)
		assert.Equal(s.T(), s.owner.ID, event.OwnerID)
		assert.NotEmpty(s.T(), event.EventID)
	case <-ctx.Done():
		s.T().Fatal("Timed out waiting for car created event")
	}
}

func (s *CarServiceIntegrationTestSuite) TestUpdatePriceNotFound() {
	_, err := s.carService.UpdatePrice(99999, 100)

	assert.ErrorIs(s.T(), err, service.ErrCarNotFound)
}

func (s *CarServiceIntegrationTestSuite) TestDeleteCarNotFound() {
	err := s.carService.DeleteCar(99999)

	assert.ErrorIs(s.T(), err, service.ErrCarNotFound)
}

func (s *CarServiceIntegrationTestSuite) TestCascadeDeleteLeavesNoOrphans() {
	admin, err := testutil.DefaultAdminUser()
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.testDB.DB.Create(admin).Error)

	for i := 0; i < 5; i++ {
		_, err := s.carService.CreateCar(s.owner.ID, "Lada", "Niva", 1990+i, 3000, 150000)
		require.NoError(s.T(), err)
	}

	err = s.adminService.DeleteUser(s.owner.ID, admin.ID)
	require.NoError(s.T(), err)

	var carCount int64
	s.testDB.DB.Model(&models.Car{}).Where("owner_id = ?", s.owner.ID).Count(&carCount)
	assert.Equal(s.T(), int64(0), carCount)

	var userCount int64
	s.testDB.DB.Model(&models.User{}).Where("id = ?", s.owner.ID).Count(&userCount)
	assert.Equal(s.T(), int64(0), userCount)

	// The cascade also drops the cached listing
	_, ok, err := s.carBroker.GetCachedCars()
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *CarServiceIntegrationTestSuite) TestSelfDeletionNeverReachesStore() {
	admin, err := testutil.DefaultAdminUser()
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.testDB.DB.Create(admin).Error)

	err = s.adminService.DeleteUser(admin.ID, admin.ID)

	assert.ErrorIs(s.T(), err, service.ErrSelfDeletion)

	var count int64
	s.testDB.DB.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func TestCarServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CarServiceIntegrationTestSuite))
}
