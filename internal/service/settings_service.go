package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fleetwatch/internal/store"
)

// 主题取值
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// SettingsService 用户设置服务
// 仅两个 blob：面板布局开关（JSON）与主题偏好，按用户键入 KV
type SettingsService interface {
	GetLayout(ctx context.Context, userID string) (json.RawMessage, error)
	PutLayout(ctx context.Context, userID string, layout json.RawMessage) error
	GetTheme(ctx context.Context, userID string) (string, error)
	PutTheme(ctx context.Context, userID, theme string) error
}

type settingsService struct {
	kv     store.KV
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(kv store.KV, logger *zap.Logger) SettingsService {
	return &settingsService{kv: kv, logger: logger}
}

func layoutKey(userID string) string { return "settings:" + userID + ":layout" }
func themeKey(userID string) string  { return "settings:" + userID + ":theme" }

// GetLayout 未设置时返回空对象
func (s *settingsService) GetLayout(ctx context.Context, userID string) (json.RawMessage, error) {
	v, err := s.kv.Get(ctx, layoutKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return json.RawMessage(`{}`), nil
		}
		return nil, err
	}
	return json.RawMessage(v), nil
}

func (s *settingsService) PutLayout(ctx context.Context, userID string, layout json.RawMessage) error {
	if !json.Valid(layout) {
		return fmt.Errorf("layout must be valid JSON")
	}
	return s.kv.Set(ctx, layoutKey(userID), string(layout), 0)
}

// GetTheme 未设置时默认 system
func (s *settingsService) GetTheme(ctx context.Context, userID string) (string, error) {
	v, err := s.kv.Get(ctx, themeKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return ThemeSystem, nil
		}
		return "", err
	}
	return v, nil
}

func (s *settingsService) PutTheme(ctx context.Context, userID, theme string) error {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.kv.Set(ctx, themeKey(userID), theme, 0)
}
