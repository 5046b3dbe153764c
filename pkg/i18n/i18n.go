package i18n

import (
	"reflect"
	"sync"
)

// Language type
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// Messages holds all translatable strings
type Messages struct {
	// System
	Starting           string
	ConfigLoaded       string
	UsingDBPath        string
	ServerListening    string
	ShuttingDown       string
	BrainSaveComplete  string
	SystemMetricsInit  string
	EngineServiceInit  string
	ConfigLoadFailed   string
	DBInitFailed       string
	DBMigrationsFailed string
	APIServerError     string
	LicenseValid       string
	LicenseInvalid     string

	// Brain
	BrainLoaded     string
	BrainLoadFailed string
	BrainSaved      string
	BrainSaveFailed string
	PretrainSkipped string
	PretrainDone    string

	// Learning
	RegimeShift       string
	OverfitMitigation string
	OverfitCleared    string
	RiskAlert         string
	RiskCleared       string

	// Virtual trading
	VirtualOpened string
	VirtualClosed string
	GateDenied    string

	// Instruments
	InstrumentsLoaded     string
	InstrumentsLoadFailed string
	InstrumentsSyncFailed string

	// Services
	BinanceFeedStarted string
	MockFeedStarted    string
	HistoryFetchFailed string
}

var (
	currentLang Language = LangEN
	mu          sync.RWMutex
	messages    *Messages
)

// English messages
var messagesEN = Messages{
	// System
	Starting:           "Starting adaptive decision core...",
	ConfigLoaded:       "Config loaded (Port: %s)",
	UsingDBPath:        "Using DB path: %s",
	ServerListening:    "Server listening on :%s",
	ShuttingDown:       "Shutting down gracefully...",
	BrainSaveComplete:  "All brain states saved.",
	SystemMetricsInit:  "System metrics initialized",
	EngineServiceInit:  "Engine service initialized",
	ConfigLoadFailed:   "Failed to load config: %v",
	DBInitFailed:       "Failed to init database: %v",
	DBMigrationsFailed: "Failed to apply migrations: %v",
	APIServerError:     "API server error: %v",
	LicenseValid:       "License valid (edition: %s)",
	LicenseInvalid:     "License check failed: %v",

	// Brain
	BrainLoaded:     "Brain loaded for %s (trend trades: %d, reversal trades: %d)",
	BrainLoadFailed: "Brain load failed for %s, starting fresh: %v",
	BrainSaved:      "Brain saved for %s -> %s",
	BrainSaveFailed: "Brain save failed for %s: %v",
	PretrainSkipped: "Pre-training skipped for %s (persisted brain active)",
	PretrainDone:    "Pre-training done for %s (%d candles, %d updates)",

	// Learning
	RegimeShift:       "Regime shift on %s (bin %d -> %d), curiosity boosted",
	OverfitMitigation: "Overfit flagged on %s (val %.4f vs train %.4f), alpha halved, pruned %d",
	OverfitCleared:    "Overfit cleared on %s, learning rate restored",
	RiskAlert:         "Risk alert on %s: drawdown %.1f%% exceeds %.1f%%",
	RiskCleared:       "Risk alert cleared on %s (drawdown %.1f%%)",

	// Virtual trading
	VirtualOpened: "Virtual trade opened: %s #%d %s @ %.4f (sl %.4f tp %.4f)",
	VirtualClosed: "Virtual trade closed: %s #%d %s pnl %.2f reward %.3f",
	GateDenied:    "Entry denied for %s: %s",

	// Instruments
	InstrumentsLoaded:     "Loaded %d instruments from %s",
	InstrumentsLoadFailed: "Failed to load instruments.yaml: %v",
	InstrumentsSyncFailed: "Failed to sync instruments to DB: %v",

	// Services
	BinanceFeedStarted: "Binance feed started",
	MockFeedStarted:    "Mock feed started",
	HistoryFetchFailed: "History fetch failed for %s: %v",
}

// Chinese messages
var messagesZH = Messages{
	// System
	Starting:           "啟動自適應決策核心...",
	ConfigLoaded:       "設定已載入（埠號：%s）",
	UsingDBPath:        "使用資料庫路徑：%s",
	ServerListening:    "服務監聽於 :%s",
	ShuttingDown:       "正在優雅關閉...",
	BrainSaveComplete:  "大腦狀態已全部保存。",
	SystemMetricsInit:  "系統指標初始化完成",
	EngineServiceInit:  "引擎服務初始化完成",
	ConfigLoadFailed:   "讀取設定失敗：%v",
	DBInitFailed:       "初始化資料庫失敗：%v",
	DBMigrationsFailed: "套用資料庫遷移失敗：%v",
	APIServerError:     "API 伺服器錯誤：%v",
	LicenseValid:       "授權有效（版本：%s）",
	LicenseInvalid:     "授權檢查失敗：%v",

	// Brain
	BrainLoaded:     "已載入 %s 的大腦（趨勢交易數：%d，反轉交易數：%d）",
	BrainLoadFailed: "載入 %s 的大腦失敗，重新開始：%v",
	BrainSaved:      "已保存 %s 的大腦 -> %s",
	BrainSaveFailed: "保存 %s 的大腦失敗：%v",
	PretrainSkipped: "略過 %s 的預訓練（已載入持久化大腦）",
	PretrainDone:    "%s 預訓練完成（%d 根K線，%d 次更新）",

	// Learning
	RegimeShift:       "%s 市場狀態切換（區間 %d -> %d），已提升探索率",
	OverfitMitigation: "%s 偵測到過擬合（驗證 %.4f 對比訓練 %.4f），學習率減半，清除 %d 筆",
	OverfitCleared:    "%s 過擬合警報解除，學習率已恢復",
	RiskAlert:         "%s 風險警報：回撤 %.1f%% 超過 %.1f%%",
	RiskCleared:       "%s 風險警報解除（回撤 %.1f%%）",

	// Virtual trading
	VirtualOpened: "虛擬交易開倉：%s #%d %s @ %.4f（停損 %.4f 停利 %.4f）",
	VirtualClosed: "虛擬交易平倉：%s #%d %s 損益 %.2f 獎勵 %.3f",
	GateDenied:    "拒絕 %s 進場：%s",

	// Instruments
	InstrumentsLoaded:     "已載入 %d 個交易商品（來源：%s）",
	InstrumentsLoadFailed: "讀取 instruments.yaml 失敗：%v",
	InstrumentsSyncFailed: "同步交易商品到資料庫失敗：%v",

	// Services
	BinanceFeedStarted: "Binance 行情訂閱已啟動",
	MockFeedStarted:    "模擬行情訂閱已啟動",
	HistoryFetchFailed: "取得 %s 歷史資料失敗：%v",
}

func init() {
	messages = &messagesEN
}

// SetLanguage sets the current language
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()

	currentLang = lang
	switch lang {
	case LangZH:
		messages = &messagesZH
	default:
		messages = &messagesEN
	}
}

// GetLanguage returns the current language
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// M returns the current messages
func M() *Messages {
	mu.RLock()
	defer mu.RUnlock()
	return messages
}

// Get returns specific message by key dynamically using reflection
func Get(key string) string {
	msg := M()
	v := reflect.ValueOf(msg).Elem()
	f := v.FieldByName(key)
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return key
}
