package stats

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProviderStats 单个提供商的调用统计
type ProviderStats struct {
	ProviderID         string `json:"providerId"`
	ModelName          string `json:"model"`
	TotalRequests      int64  `json:"totalRequests"`
	SuccessfulRequests int64  `json:"successfulRequests"`
	FailedRequests     int64  `json:"failedRequests"`
	// EmptyResponses 调用成功但没有文本
	EmptyResponses int64 `json:"emptyResponses"`

	AverageLatency time.Duration `json:"averageLatency"`
	MinLatency     time.Duration `json:"minLatency"`
	MaxLatency     time.Duration `json:"maxLatency"`
	TotalLatency   time.Duration `json:"totalLatency"`

	// ErrorTypes 按错误类型统计
	ErrorTypes map[string]int64 `json:"errorTypes,omitempty"`

	FirstRequestTime time.Time `json:"firstRequestTime"`
	LastRequestTime  time.Time `json:"lastRequestTime"`
}

// SuccessRate 成功率，百分比
func (ps ProviderStats) SuccessRate() float64 {
	if ps.TotalRequests == 0 {
		return 0
	}
	return float64(ps.SuccessfulRequests) / float64(ps.TotalRequests) * 100
}

// RequestResult 单次请求结果
type RequestResult struct {
	Success   bool
	Empty     bool
	Latency   time.Duration
	ErrorType string
}

// Manager 统计管理器
type Manager struct {
	stats  map[string]*ProviderStats // key: provider:model
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewManager 创建统计管理器
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		stats:  make(map[string]*ProviderStats),
		logger: logger,
	}
}

func (m *Manager) getKey(provider, model string) string {
	return fmt.Sprintf("%s:%s", provider, model)
}

// RecordRequest 记录请求结果
func (m *Manager) RecordRequest(provider, model string, result RequestResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.getKey(provider, model)
	stats, exists := m.stats[key]
	if !exists {
		stats = &ProviderStats{
			ProviderID: provider,
			ModelName:  model,
			ErrorTypes: make(map[string]int64),
			MinLatency: result.Latency,
		}
		m.stats[key] = stats
	}

	now := time.Now()
	if stats.FirstRequestTime.IsZero() {
		stats.FirstRequestTime = now
	}
	stats.LastRequestTime = now

	stats.TotalRequests++
	if result.Success {
		stats.SuccessfulRequests++
		if result.Empty {
			stats.EmptyResponses++
		}
	} else {
		stats.FailedRequests++
		if result.ErrorType != "" {
			stats.ErrorTypes[result.ErrorType]++
		}
	}

	stats.TotalLatency += result.Latency
	if result.Latency < stats.MinLatency {
		stats.MinLatency = result.Latency
	}
	if result.Latency > stats.MaxLatency {
		stats.MaxLatency = result.Latency
	}
	stats.AverageLatency = stats.TotalLatency / time.Duration(stats.TotalRequests)

	m.logger.Debug("记录提供商调用",
		zap.String("provider", provider),
		zap.Bool("success", result.Success),
		zap.Duration("latency", result.Latency))
}

// GetStats 获取指定提供商的统计副本，不存在时返回 nil
func (m *Manager) GetStats(provider, model string) *ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if stats, exists := m.stats[m.getKey(provider, model)]; exists {
		statsCopy := copyStats(stats)
		return &statsCopy
	}
	return nil
}

// GetAllStats 获取全部统计副本，按提供商和模型排序
func (m *Manager) GetAllStats() []ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ProviderStats, 0, len(m.stats))
	for _, stats := range m.stats {
		result = append(result, copyStats(stats))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ProviderID != result[j].ProviderID {
			return result[i].ProviderID < result[j].ProviderID
		}
		return result[i].ModelName < result[j].ModelName
	})

	return result
}

func copyStats(stats *ProviderStats) ProviderStats {
	statsCopy := *stats
	statsCopy.ErrorTypes = make(map[string]int64, len(stats.ErrorTypes))
	for k, v := range stats.ErrorTypes {
		statsCopy.ErrorTypes[k] = v
	}
	return statsCopy
}
