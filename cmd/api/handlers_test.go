package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/warehouse-core/internal/application"
	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/logging"
)

type stubTaskRepo struct {
	SaveFn                   func(ctx context.Context, task *domain.Task) error
	FindByIDFn               func(ctx context.Context, taskID string) (*domain.Task, error)
	FindByFilterFn           func(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	FindPendingByWarehouseFn func(ctx context.Context, warehouseID string) ([]*domain.Task, error)
	CountActiveByStaffFn     func(ctx context.Context, staffID string) (int64, error)
	CountByStatusFn          func(ctx context.Context, warehouseID string) (map[domain.TaskStatus]int64, error)
}

func (s *stubTaskRepo) Save(ctx context.Context, task *domain.Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}
	return nil
}

func (s *stubTaskRepo) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, taskID)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindByFilter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if s.FindByFilterFn != nil {
		return s.FindByFilterFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindPendingByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Task, error) {
	if s.FindPendingByWarehouseFn != nil {
		return s.FindPendingByWarehouseFn(ctx, warehouseID)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindPendingByZone(ctx context.Context, warehouseID, zoneID string) ([]*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) CountActiveByStaff(ctx context.Context, staffID string) (int64, error) {
	if s.CountActiveByStaffFn != nil {
		return s.CountActiveByStaffFn(ctx, staffID)
	}
	return 0, nil
}

func (s *stubTaskRepo) CountByStatus(ctx context.Context, warehouseID string) (map[domain.TaskStatus]int64, error) {
	if s.CountByStatusFn != nil {
		return s.CountByStatusFn(ctx, warehouseID)
	}
	return nil, nil
}

type stubStaffRepo struct {
	FindByIDFn              func(ctx context.Context, staffID string) (*domain.Staff, error)
	FindActiveByWarehouseFn func(ctx context.Context, warehouseID string) ([]*domain.Staff, error)
}

func (s *stubStaffRepo) FindByID(ctx context.Context, staffID string) (*domain.Staff, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, staffID)
	}
	return nil, nil
}

func (s *stubStaffRepo) FindActiveByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Staff, error) {
	if s.FindActiveByWarehouseFn != nil {
		return s.FindActiveByWarehouseFn(ctx, warehouseID)
	}
	return nil, nil
}

func newTestTaskService(tasks domain.TaskRepository, staff domain.StaffRepository) (*application.TaskApplicationService, *logging.Logger) {
	logger := logging.New(logging.DefaultConfig("test"))
	return application.NewTaskApplicationService(tasks, staff, logger, nil), logger
}

func activeStaffMember(staffID string) *domain.Staff {
	return &domain.Staff{StaffID: staffID, WarehouseID: "wh-1", Status: domain.StaffStatusActive}
}

func requestJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "value")
	if got := getEnv("TEST_ENV_KEY", "default"); got != "value" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := getEnv("MISSING_KEY", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DATABASE", "warehouse_core_test")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092")

	cfg := loadConfig()
	if cfg.ServerAddr != ":9000" {
		t.Fatalf("unexpected server addr: %q", cfg.ServerAddr)
	}
	if cfg.MongoDB.URI != "mongodb://example:27017" || cfg.MongoDB.Database != "warehouse_core_test" {
		t.Fatalf("unexpected mongo config: %#v", cfg.MongoDB)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "broker-1:9092" {
		t.Fatalf("unexpected kafka brokers: %#v", cfg.Kafka.Brokers)
	}
}

func TestCreateTaskHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, logger := newTestTaskService(&stubTaskRepo{}, &stubStaffRepo{})
	router := gin.New()
	router.POST("/tasks", createTaskHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/tasks", map[string]any{
		"warehouseId": "wh-1",
		"type":        "PICKING",
		"priority":    3,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		TaskID string `json:"taskId"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.TaskID == "" || created.Status != string(domain.TaskStatusPending) {
		t.Fatalf("unexpected task: %#v", created)
	}
}

func TestCreateTaskHandler_BadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, logger := newTestTaskService(&stubTaskRepo{}, &stubStaffRepo{})
	router := gin.New()
	router.POST("/tasks", createTaskHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/tasks", map[string]any{
		"warehouseId": "wh-1",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateTaskHandler_InternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubTaskRepo{
		SaveFn: func(_ context.Context, _ *domain.Task) error {
			return errors.New("save failed")
		},
	}
	service, logger := newTestTaskService(repo, &stubStaffRepo{})
	router := gin.New()
	router.POST("/tasks", createTaskHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/tasks", map[string]any{
		"warehouseId": "wh-1",
		"type":        "PICKING",
	})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestGetTaskHandler_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, logger := newTestTaskService(&stubTaskRepo{}, &stubStaffRepo{})
	router := gin.New()
	router.GET("/tasks/:taskId", getTaskHandler(service, logger))

	resp := requestJSON(t, router, http.MethodGet, "/tasks/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTaskLifecycleHandlers_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	task := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityMedium)
	task.ClearDomainEvents()
	repo := &stubTaskRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Task, error) {
			return task, nil
		},
	}
	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			return activeStaffMember(staffID), nil
		},
	}
	service, logger := newTestTaskService(repo, staff)
	router := gin.New()
	router.POST("/tasks/:taskId/assign", assignTaskHandler(service, logger))
	router.POST("/tasks/:taskId/start", startTaskHandler(service, logger))
	router.POST("/tasks/:taskId/complete", completeTaskHandler(service, logger))

	assignResp := requestJSON(t, router, http.MethodPost, "/tasks/"+task.TaskID+"/assign", map[string]any{
		"staffId": "staff-1",
	})
	if assignResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", assignResp.Code, assignResp.Body.String())
	}

	startResp := requestJSON(t, router, http.MethodPost, "/tasks/"+task.TaskID+"/start", nil)
	if startResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", startResp.Code, startResp.Body.String())
	}

	completeResp := requestJSON(t, router, http.MethodPost, "/tasks/"+task.TaskID+"/complete", map[string]any{
		"actualDurationMinutes": 12,
	})
	if completeResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", completeResp.Code, completeResp.Body.String())
	}
	if task.Status != domain.TaskStatusCompleted {
		t.Fatalf("expected completed, got %s", task.Status)
	}
}

func TestStartTaskHandler_InvalidTransition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	task := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityMedium)
	task.ClearDomainEvents()
	repo := &stubTaskRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Task, error) {
			return task, nil
		},
	}
	service, logger := newTestTaskService(repo, &stubStaffRepo{})
	router := gin.New()
	router.POST("/tasks/:taskId/start", startTaskHandler(service, logger))

	// A pending task cannot start before it is assigned.
	resp := requestJSON(t, router, http.MethodPost, "/tasks/"+task.TaskID+"/start", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCancelTaskHandler_RequiresReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, logger := newTestTaskService(&stubTaskRepo{}, &stubStaffRepo{})
	router := gin.New()
	router.POST("/tasks/:taskId/cancel", cancelTaskHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/tasks/task-1/cancel", map[string]any{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTaskStatisticsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubTaskRepo{
		CountByStatusFn: func(_ context.Context, _ string) (map[domain.TaskStatus]int64, error) {
			return map[domain.TaskStatus]int64{
				domain.TaskStatusPending:   3,
				domain.TaskStatusCompleted: 7,
			}, nil
		},
	}
	service, logger := newTestTaskService(repo, &stubStaffRepo{})
	router := gin.New()
	router.GET("/tasks/statistics", taskStatisticsHandler(service, logger))

	resp := requestJSON(t, router, http.MethodGet, "/tasks/statistics?warehouseId=wh-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var stats struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Total != 10 {
		t.Fatalf("expected total 10, got %d", stats.Total)
	}

	missingResp := requestJSON(t, router, http.MethodGet, "/tasks/statistics", nil)
	if missingResp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without warehouseId, got %d", missingResp.Code)
	}
}

func TestAutoAssignHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pending := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityHigh)
	pending.ClearDomainEvents()
	repo := &stubTaskRepo{
		FindPendingByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Task, error) {
			return []*domain.Task{pending}, nil
		},
	}
	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return []*domain.Staff{activeStaffMember("staff-1")}, nil
		},
	}
	logger := logging.New(logging.DefaultConfig("test"))
	service := application.NewAssignmentService(repo, staff, logger, nil)
	router := gin.New()
	router.POST("/assignments/auto", autoAssignHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/assignments/auto", map[string]any{
		"warehouseId":    "wh-1",
		"maxAssignments": 5,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		AssignmentsMade int `json:"assignmentsMade"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.AssignmentsMade != 1 {
		t.Fatalf("expected 1 assignment, got %d", result.AssignmentsMade)
	}
}

func TestAutoAssignHandler_BadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logging.New(logging.DefaultConfig("test"))
	service := application.NewAssignmentService(&stubTaskRepo{}, &stubStaffRepo{}, logger, nil)
	router := gin.New()
	router.POST("/assignments/auto", autoAssignHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/assignments/auto", map[string]any{
		"warehouseId": "wh-1",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
