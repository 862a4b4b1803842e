package ride

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/middleware"
	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/user"
)

type fakeRepo struct {
	rides   map[string]*Ride
	updated bool
}

func (f *fakeRepo) Create(_ context.Context, dto CreateRideDTO) (*Ride, error) {
	ride := &Ride{PublicID: "r-new", PatientName: dto.PatientName, Status: StatusRequested, CreatedBy: dto.CreatedBy}
	if dto.DriverID != "" {
		ride.DriverID = &dto.DriverID
		ride.Status = StatusAssigned
	}
	return ride, nil
}

func (f *fakeRepo) GetByID(_ context.Context, publicID string) (*Ride, error) {
	ride, ok := f.rides[publicID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ride
	return &cp, nil
}

func (f *fakeRepo) ListAll(context.Context) ([]Ride, error)              { return nil, nil }
func (f *fakeRepo) ListByDriver(context.Context, string) ([]Ride, error) { return nil, nil }

func (f *fakeRepo) UpdateStatus(_ context.Context, publicID string, from, to Status) error {
	ride, ok := f.rides[publicID]
	if !ok || ride.Status != from {
		return ErrNotFound
	}
	ride.Status = to
	f.updated = true
	return nil
}

func patchStatus(t *testing.T, repo *fakeRepo, sess *session.Session, rideID, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodPatch, "/"+rideID+"/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithSession(req.Context(), sess))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rideID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	return rec
}

func assignedRide(driverID string) map[string]*Ride {
	return map[string]*Ride{
		"r-1": {PublicID: "r-1", Status: StatusAssigned, DriverID: &driverID},
	}
}

func TestUpdateStatus_DriverMovesOwnRide(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{rides: assignedRide("d-1")}
	sess := &session.Session{UserID: "d-1", Role: user.RoleDriver}
	rec := patchStatus(t, repo, sess, "r-1", `{"status":"picked_up"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, repo.updated)
}

func TestUpdateStatus_DriverCannotMoveForeignRide(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{rides: assignedRide("d-1")}
	sess := &session.Session{UserID: "d-2", Role: user.RoleDriver}
	rec := patchStatus(t, repo, sess, "r-1", `{"status":"picked_up"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, repo.updated)
}

func TestUpdateStatus_OfficerMovesAnyRide(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{rides: assignedRide("d-1")}
	sess := &session.Session{UserID: "o-1", Role: user.RoleOfficer}
	rec := patchStatus(t, repo, sess, "r-1", `{"status":"picked_up"}`)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus_InvalidTransitionConflicts(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{rides: assignedRide("d-1")}
	sess := &session.Session{UserID: "d-1", Role: user.RoleDriver}
	rec := patchStatus(t, repo, sess, "r-1", `{"status":"completed"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, repo.updated)
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{rides: assignedRide("d-1")}
	sess := &session.Session{UserID: "d-1", Role: user.RoleDriver}
	rec := patchStatus(t, repo, sess, "r-1", `{"status":"teleported"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFlow(t *testing.T) {
	t.Parallel()

	require.True(t, StatusRequested.CanTransitionTo(StatusAssigned))
	require.True(t, StatusAssigned.CanTransitionTo(StatusPickedUp))
	require.True(t, StatusPickedUp.CanTransitionTo(StatusCompleted))
	require.False(t, StatusRequested.CanTransitionTo(StatusPickedUp))
	require.False(t, StatusCompleted.CanTransitionTo(StatusRequested))
}
