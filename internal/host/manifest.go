package host

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HostName 原生消息宿主名称，浏览器扩展通过它连接
const HostName = "com.nerdneilsfield.select_translator"

// Browser 浏览器类型
type Browser string

const (
	BrowserChrome   Browser = "chrome"
	BrowserChromium Browser = "chromium"
	BrowserEdge     Browser = "edge"
	BrowserBrave    Browser = "brave"
	BrowserFirefox  Browser = "firefox"
)

// Browsers 所有支持的浏览器
func Browsers() []Browser {
	return []Browser{BrowserChrome, BrowserChromium, BrowserEdge, BrowserBrave, BrowserFirefox}
}

// ParseBrowser 解析浏览器名称
func ParseBrowser(name string) (Browser, error) {
	b := Browser(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Browsers() {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unsupported browser: %s", name)
}

// Manifest 原生消息宿主清单
type Manifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
}

// NewManifest 生成清单。Chromium 系浏览器使用 allowed_origins，Firefox 使用 allowed_extensions
func NewManifest(browser Browser, binaryPath string, extensionIDs []string) Manifest {
	m := Manifest{
		Name:        HostName,
		Description: "AI selection translator host",
		Path:        binaryPath,
		Type:        "stdio",
	}
	if browser == BrowserFirefox {
		m.AllowedExtensions = append([]string{}, extensionIDs...)
		return m
	}
	for _, id := range extensionIDs {
		m.AllowedOrigins = append(m.AllowedOrigins, "chrome-extension://"+id+"/")
	}
	return m
}

// ManifestDir 用户级清单目录
func ManifestDir(browser Browser, goos, home string) (string, error) {
	var linux, darwin string
	switch browser {
	case BrowserChrome:
		linux, darwin = ".config/google-chrome", "Library/Application Support/Google/Chrome"
	case BrowserChromium:
		linux, darwin = ".config/chromium", "Library/Application Support/Chromium"
	case BrowserEdge:
		linux, darwin = ".config/microsoft-edge", "Library/Application Support/Microsoft Edge"
	case BrowserBrave:
		linux, darwin = ".config/BraveSoftware/Brave-Browser", "Library/Application Support/BraveSoftware/Brave-Browser"
	case BrowserFirefox:
		linux, darwin = ".mozilla", "Library/Application Support/Mozilla"
	default:
		return "", fmt.Errorf("unsupported browser: %s", browser)
	}

	sub := "NativeMessagingHosts"
	if browser == BrowserFirefox {
		sub = "native-messaging-hosts"
		if goos == "darwin" {
			sub = "NativeMessagingHosts"
		}
	}

	switch goos {
	case "linux", "freebsd", "openbsd":
		return filepath.Join(home, linux, sub), nil
	case "darwin":
		return filepath.Join(home, darwin, sub), nil
	default:
		// Windows 需要写注册表
		return "", fmt.Errorf("manifest installation is not supported on %s", goos)
	}
}

// InstallManifest 把清单写到 dir/<HostName>.json 并返回文件路径
func InstallManifest(dir string, browser Browser, binaryPath string, extensionIDs []string) (string, error) {
	if !filepath.IsAbs(binaryPath) {
		return "", fmt.Errorf("host binary path must be absolute: %s", binaryPath)
	}
	if len(extensionIDs) == 0 {
		return "", fmt.Errorf("at least one extension id is required")
	}

	data, err := json.MarshalIndent(NewManifest(browser, binaryPath, extensionIDs), "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory: %w", err)
	}
	path := filepath.Join(dir, HostName+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
