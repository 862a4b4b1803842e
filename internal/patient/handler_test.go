package patient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/middleware"
	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/user"
)

type fakeRepo struct {
	created            bool
	createdAppointment bool
}

func (f *fakeRepo) Create(_ context.Context, dto CreatePatientDTO) (*Patient, error) {
	f.created = true
	return &Patient{PublicID: "p-new", CitizenID: dto.CitizenID, Name: dto.Name}, nil
}

func (f *fakeRepo) GetByID(context.Context, string) (*Patient, error) {
	return nil, ErrNotFound
}

func (f *fakeRepo) List(context.Context) ([]Patient, error) {
	return nil, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, dto CreateAppointmentDTO) (*Appointment, error) {
	f.createdAppointment = true
	return &Appointment{PublicID: "a-new", PatientID: dto.PatientID}, nil
}

func (f *fakeRepo) ListAppointments(context.Context) ([]Appointment, error) {
	return nil, nil
}

func postAs(t *testing.T, repo *fakeRepo, sess *session.Session, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(repo, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

const validPatientBody = `{"citizen_id":"1234567890123","name":"Ada","address":"12 Elm St"}`

func TestCreate_ExecutiveIsReadOnly(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	rec := postAs(t, repo, &session.Session{UserID: "e-1", Role: user.RoleExecutive},
		"/", validPatientBody)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, repo.created)
}

func TestCreate_HealthOfficerRegistersPatient(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	rec := postAs(t, repo, &session.Session{UserID: "ho-1", Role: user.RoleHealthOfficer},
		"/", validPatientBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, repo.created)
}

func TestCreateAppointment_ExecutiveIsReadOnly(t *testing.T) {
	t.Parallel()

	scheduled := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	repo := &fakeRepo{}
	rec := postAs(t, repo, &session.Session{UserID: "e-1", Role: user.RoleExecutive},
		"/p-1/appointments", `{"scheduled_at":"`+scheduled+`","purpose":"checkup"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, repo.createdAppointment)
}

func TestCreateAppointment_HealthOfficerSchedules(t *testing.T) {
	t.Parallel()

	scheduled := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	repo := &fakeRepo{}
	rec := postAs(t, repo, &session.Session{UserID: "ho-1", Role: user.RoleHealthOfficer},
		"/p-1/appointments", `{"scheduled_at":"`+scheduled+`","purpose":"checkup"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, repo.createdAppointment)
}
