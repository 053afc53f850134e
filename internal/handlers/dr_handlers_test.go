package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetgov/internal/common"
	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DrHandlersTestSuite struct {
	suite.Suite
	e        *echo.Echo
	drSvc    *MockDrService
	handlers *DrHandlers
}

func (s *DrHandlersTestSuite) SetupTest() {
	s.e = echo.New()
	s.drSvc = new(MockDrService)
	s.handlers = NewDrHandlers(s.drSvc)
}

func (s *DrHandlersTestSuite) postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.e.NewContext(req, rec), rec
}

func (s *DrHandlersTestSuite) TestRunSimulationDefaultsKind() {
	backupID := uuid.New()
	rto := int64(12)
	sim := &models.DrSimulation{ID: uuid.New(), Status: models.DrStatusSuccess, RtoSeconds: &rto}
	s.drSvc.On("RunSimulation", mock.Anything, models.DrKindBackupRestore, backupID, mock.Anything).
		Return(sim, nil)

	c, rec := s.postJSON("/dr/simulations", fmt.Sprintf(`{"backup_id":%q}`, backupID))

	s.NoError(s.handlers.RunSimulation(c))
	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), sim.ID.String())
	s.drSvc.AssertExpectations(s.T())
}

func (s *DrHandlersTestSuite) TestPromoteWithoutValidationReturns412() {
	backupID := uuid.New()
	s.drSvc.On("Promote", mock.Anything, backupID, mock.Anything).
		Return(nil, fmt.Errorf("%w: backup %s has no successful validation record", common.ErrFailedPrecondition, backupID))

	c, rec := s.postJSON("/dr/promote", fmt.Sprintf(`{"backup_id":%q}`, backupID))

	s.NoError(s.handlers.PromoteSandboxToProd(c))
	s.Equal(http.StatusPreconditionFailed, rec.Code)
	s.Contains(rec.Body.String(), "FAILED_PRECONDITION")
}

func (s *DrHandlersTestSuite) TestPromoteSuccess() {
	backupID := uuid.New()
	sim := &models.DrSimulation{ID: uuid.New(), BackupID: backupID, Status: models.DrStatusSuccess}
	s.drSvc.On("Promote", mock.Anything, backupID, mock.Anything).Return(sim, nil)

	c, rec := s.postJSON("/dr/promote", fmt.Sprintf(`{"backup_id":%q}`, backupID))

	s.NoError(s.handlers.PromoteSandboxToProd(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"promoted":true`)
	s.Contains(rec.Body.String(), sim.ID.String())
}

func (s *DrHandlersTestSuite) TestDirectRestoreRequiresConfirmation() {
	backupID := uuid.New()
	s.drSvc.On("DirectRestore", mock.Anything, backupID, mock.Anything, "wrong").
		Return(fmt.Errorf("%w: confirmation phrase mismatch", common.ErrInvalidArgument))

	c, rec := s.postJSON("/dr/restore-direct", fmt.Sprintf(`{"backup_id":%q,"confirm":"wrong"}`, backupID))

	s.NoError(s.handlers.DirectRestore(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *DrHandlersTestSuite) TestListSimulationsPagination() {
	s.drSvc.On("ListSimulations", mock.Anything, 10, 20).Return([]*models.DrSimulation{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/dr/simulations?limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	s.NoError(s.handlers.ListSimulations(c))
	s.Equal(http.StatusOK, rec.Code)
	s.drSvc.AssertExpectations(s.T())
}

func TestDrHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(DrHandlersTestSuite))
}
