package loan_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hr-backoffice/internal/approval"
	approvalerrors "hr-backoffice/internal/approval/errors"
	"hr-backoffice/internal/hierarchy"
	"hr-backoffice/internal/loan"
	loanerrors "hr-backoffice/internal/loan/errors"
	"hr-backoffice/internal/middleware"
	"hr-backoffice/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLoanService struct {
	createFn        func(ctx context.Context, actor hierarchy.Identity, req loan.CreateLoanRequest) (loan.LoanResponse, error)
	getAllFn        func(ctx context.Context) ([]loan.LoanResponse, error)
	getByEmployeeFn func(ctx context.Context, employeeID string) ([]loan.LoanResponse, error)
	getByIDFn       func(ctx context.Context, id string) (loan.LoanResponse, error)
	actFn           func(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (loan.LoanResponse, error)
}

func (f *fakeLoanService) Create(ctx context.Context, actor hierarchy.Identity, req loan.CreateLoanRequest) (loan.LoanResponse, error) {
	return f.createFn(ctx, actor, req)
}
func (f *fakeLoanService) GetAll(ctx context.Context) ([]loan.LoanResponse, error) {
	return f.getAllFn(ctx)
}
func (f *fakeLoanService) GetByEmployee(ctx context.Context, employeeID string) ([]loan.LoanResponse, error) {
	return f.getByEmployeeFn(ctx, employeeID)
}
func (f *fakeLoanService) GetByID(ctx context.Context, id string) (loan.LoanResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeLoanService) Act(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (loan.LoanResponse, error) {
	return f.actFn(ctx, actor, id, action, remarks)
}

func TestLoanHandler_ApproveMapsStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not eligible is 403", approvalerrors.ErrNotEligible, http.StatusForbidden, apperror.CodeForbidden},
		{"already escalated is 403", approvalerrors.ErrAlreadyEscalated, http.StatusForbidden, apperror.CodeForbidden},
		{"terminal is 409", approvalerrors.ErrTerminalState, http.StatusConflict, apperror.CodeInvalidState},
		{"missing loan is 404", loanerrors.ErrLoanNotFound, http.StatusNotFound, apperror.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeLoanService{
				actFn: func(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (loan.LoanResponse, error) {
					return loan.LoanResponse{}, tc.err
				},
			}

			h := loan.NewHandler(svc)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/loans/x/approve", nil)
			c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

			h.Approve(c)

			assert.Equal(t, tc.wantStatus, w.Code)
			env := decodeEnvelope(t, w.Body.Bytes())
			assert.False(t, env.Ok)
			assert.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
		})
	}
}

func TestLoanHandler_ApprovePassesActorIdentity(t *testing.T) {
	userID := uuid.New().String()
	employeeID := uuid.New().String()
	loanID := uuid.New().String()

	svc := &fakeLoanService{
		actFn: func(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (loan.LoanResponse, error) {
			assert.Equal(t, userID, actor.UserID)
			assert.Equal(t, employeeID, actor.EmployeeID)
			assert.False(t, actor.IsAdmin)
			assert.Equal(t, loanID, id)
			assert.Equal(t, approval.ActionApprove, action)
			return loan.LoanResponse{ID: id, Status: string(approval.StatusPendingAuthorization)}, nil
		},
	}

	h := loan.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/loans/x/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: loanID}}
	c.Set("user_id", userID)
	c.Set("employee_id", employeeID)
	c.Set("role", "EMPLOYEE")
	c.Set("is_admin", false)

	h.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)

	var got loan.LoanResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, string(approval.StatusPendingAuthorization), got.Status)
}

func TestLoanHandler_RejectRequiresRemarks(t *testing.T) {
	h := loan.NewHandler(&fakeLoanService{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/loans/x/reject", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.Reject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, apperror.CodeInvalidInput, env.Error.Code)
}

func TestLoanHandler_RejectPassesRemarks(t *testing.T) {
	svc := &fakeLoanService{
		actFn: func(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (loan.LoanResponse, error) {
			assert.Equal(t, approval.ActionReject, action)
			assert.Equal(t, "insufficient tenure", remarks)
			return loan.LoanResponse{ID: id, Status: string(approval.StatusRejected)}, nil
		},
	}

	h := loan.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/loans/x/reject", strings.NewReader(`{"remarks":"insufficient tenure"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.Reject(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoanHandler_IdempotentApproveCachesAndReplays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := redismock.NewClientMock()
	defer db.Close()

	loanID := uuid.New().String()
	calls := 0
	svc := &fakeLoanService{
		actFn: func(ctx context.Context, actor hierarchy.Identity, id string, action approval.Action, remarks string) (loan.LoanResponse, error) {
			calls++
			return loan.LoanResponse{ID: id, Status: string(approval.StatusPendingAuthorization)}, nil
		},
	}

	h := loan.NewHandlerWithRedis(svc, db)
	r := gin.New()
	r.POST("/loans/:id/approve",
		func(c *gin.Context) { c.Set("user_id", "u1"); c.Next() },
		middleware.Idempotency(db),
		h.Approve,
	)

	payload, err := json.Marshal(loan.LoanResponse{ID: loanID, Status: string(approval.StatusPendingAuthorization)})
	assert.NoError(t, err)

	cacheKey := "idemp:/loans/:id/approve:u1:key-7"
	lockKey := cacheKey + ":lock"

	// First submit does the work, caches the response, and releases
	// its lock.
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	mock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
	mock.ExpectDel(lockKey).SetVal(1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/loans/"+loanID+"/approve", nil)
	req.Header.Set("Idempotency-Key", "key-7")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)

	// A retry with the same key is answered from cache and never
	// reaches the service.
	mock.ExpectGet(cacheKey).SetVal(string(payload))

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/loans/"+loanID+"/approve", nil)
	req2.Header.Set("Idempotency-Key", "key-7")
	r.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, calls)
	assert.Contains(t, w2.Body.String(), loanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
