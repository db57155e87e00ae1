package httpapi

import (
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// apiPrefix 版本化 API 前缀
const apiPrefix = "/triage/api/v1"

// Router 使用标准库 http.ServeMux，外层统一处理 CORS
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger

	mu     sync.RWMutex
	checks map[string]func() bool
}

func NewRouter(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
		checks: map[string]func() bool{},
	}
	r.Handle("/healthz", r.health)
	return r
}

// AddHealthCheck 注册 /healthz 依赖检查（例如 MQTT 连接状态）
func (r *Router) AddHealthCheck(name string, check func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// health 任一检查失败返回 503；可选依赖只报告状态，服务本身仍可处理请求
func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(r.checks))
	for name, check := range r.checks {
		if check() {
			deps[name] = "up"
			continue
		}
		deps[name] = "down"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if code != http.StatusOK {
		r.logger.Warn("health check degraded", zap.Any("checks", deps))
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": deps})
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	setCORSHeaders(w)
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	r.mux.ServeHTTP(w, req)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
}

// RegisterTriageRoutes 注册版本化的分诊 API
func (r *Router) RegisterTriageRoutes(h *TriageHandler) {
	r.Handle(apiPrefix+"/patients", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListPatients(w, req)
		case http.MethodPost:
			h.AddPatient(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle(apiPrefix+"/patients/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.ExportPatients(w, req)
	})

	// patients/{id}
	r.Handle(apiPrefix+"/patients/", func(w http.ResponseWriter, req *http.Request) {
		id, ok := pathID(req.URL.Path, apiPrefix+"/patients/")
		if !ok {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		switch req.Method {
		case http.MethodPut, http.MethodPatch:
			h.UpdatePatient(w, req, id)
		case http.MethodDelete:
			h.DeletePatient(w, req, id)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle(apiPrefix+"/audit", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.RecentInvocations(w, req)
	})

	// 未知 API 路径返回 JSON 404，而不是落到前端页面
	r.Handle(apiPrefix+"/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	})
}

// RegisterLegacyRoutes 注册旧前端使用的路由
func (r *Router) RegisterLegacyRoutes(h *LegacyHandler) {
	r.Handle("/patients", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.Patients(w, req)
	})
	r.Handle("/addPatient", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.AddPatient(w, req)
	})
	r.Handle("/updatePatient", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.UpdatePatient(w, req)
	})
	r.Handle("/deletePatient/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		id, ok := pathID(req.URL.Path, "/deletePatient/")
		if !ok {
			writeJSON(w, http.StatusNotFound, legacyError{Error: "Delete failed", Kind: "validation"})
			return
		}
		h.DeletePatient(w, req, id)
	})
}

// RegisterStaticRoutes 前端静态文件 + SPA 回退
func (r *Router) RegisterStaticRoutes(dir string) {
	r.HandleHandler("/", NewSPAHandler(dir))
}

func isAPIPath(p string) bool {
	return strings.HasPrefix(p, apiPrefix+"/")
}
