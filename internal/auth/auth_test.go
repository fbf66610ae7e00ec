package auth

import (
	"strings"
	"testing"
	"time"
)

func testConfig() *TokenConfig {
	return &TokenConfig{
		Secret:     []byte("test_secret_key_32_bytes_long___"),
		Expiration: time.Hour,
	}
}

// TestGenerateAndParseToken 测试令牌签发与解析往返
func TestGenerateAndParseToken(t *testing.T) {
	config := testConfig()

	tokenString, err := GenerateToken("user_123", config)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	if tokenString == "" {
		t.Fatal("令牌不应该为空")
	}

	// 令牌格式: payload.signature
	if len(strings.Split(tokenString, ".")) != 2 {
		t.Error("令牌应该由两部分组成")
	}

	parsed, err := ParseToken(tokenString, config)
	if err != nil {
		t.Fatalf("解析令牌失败: %v", err)
	}

	if parsed.UserID != "user_123" {
		t.Errorf("用户ID不正确，期望: user_123，实际: %s", parsed.UserID)
	}

	if parsed.ExpiresAt <= parsed.IssuedAt {
		t.Error("过期时间应该晚于签发时间")
	}
}

// TestGenerateTokenValidation 测试签发时的输入校验
func TestGenerateTokenValidation(t *testing.T) {
	if _, err := GenerateToken("", testConfig()); err == nil {
		t.Error("空用户ID应该被拒绝")
	}

	emptySecret := &TokenConfig{Expiration: time.Hour}
	if _, err := GenerateToken("user_123", emptySecret); err == nil {
		t.Error("空密钥应该被拒绝")
	}
}

// TestParseTokenExpired 测试过期令牌被拒绝
func TestParseTokenExpired(t *testing.T) {
	config := &TokenConfig{
		Secret:     []byte("test_secret_key_32_bytes_long___"),
		Expiration: -time.Hour, // 签发即过期
	}

	tokenString, err := GenerateToken("user_123", config)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	if _, err := ParseToken(tokenString, config); err == nil {
		t.Error("过期令牌应该被拒绝")
	}
}

// TestParseTokenTampered 测试被篡改的令牌被拒绝
func TestParseTokenTampered(t *testing.T) {
	config := testConfig()

	tokenString, err := GenerateToken("user_123", config)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	// 篡改载荷部分
	parts := strings.Split(tokenString, ".")
	tampered := parts[0][:len(parts[0])-4] + "AAAA" + "." + parts[1]

	if _, err := ParseToken(tampered, config); err == nil {
		t.Error("被篡改的令牌应该被拒绝")
	}
}

// TestParseTokenWrongSecret 测试错误密钥解析失败
func TestParseTokenWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken("user_123", testConfig())
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	otherConfig := &TokenConfig{
		Secret:     []byte("another_secret_key_32_bytes_long"),
		Expiration: time.Hour,
	}

	if _, err := ParseToken(tokenString, otherConfig); err == nil {
		t.Error("用错误密钥解析应该失败")
	}
}

// TestParseTokenMalformed 测试格式错误的令牌
func TestParseTokenMalformed(t *testing.T) {
	config := testConfig()

	for _, invalid := range []string{"", "no-dot", "a.b.c", "!!!.???"} {
		if _, err := ParseToken(invalid, config); err == nil {
			t.Errorf("格式错误的令牌 %q 应该被拒绝", invalid)
		}
	}
}

// TestGenerateSecureKey 测试随机密钥生成
func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(32)
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}

	if len(key) != 32 {
		t.Errorf("密钥长度不正确，期望: 32，实际: %d", len(key))
	}

	// 无效长度回退到默认值
	key, err = GenerateSecureKey(0)
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("默认密钥长度应该是32，实际: %d", len(key))
	}

	// 两次生成的密钥不应该相同
	other, _ := GenerateSecureKey(32)
	if string(key) == string(other) {
		t.Error("两次生成的随机密钥不应该相同")
	}
}
