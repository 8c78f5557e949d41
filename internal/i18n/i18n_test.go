package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLocaleContext(target, acceptLanguage string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	c.Request = req
	return c
}

func TestResolveLocale(t *testing.T) {
	cases := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{name: "default", target: "/", want: LocaleEN},
		{name: "header zh", target: "/", header: "zh-TW,zh;q=0.9,en;q=0.8", want: LocaleZH},
		{name: "header skips unknown", target: "/", header: "fr-FR, en-GB;q=0.7", want: LocaleEN},
		{name: "query wins", target: "/?lang=zh_CN", header: "en-US", want: LocaleZH},
		{name: "unknown query falls back", target: "/?lang=de", want: LocaleEN},
	}
	for _, tc := range cases {
		got := ResolveLocale(newLocaleContext(tc.target, tc.header))
		if got != tc.want {
			t.Fatalf("%s: want %s got %s", tc.name, tc.want, got)
		}
	}
	if ResolveLocale(nil) != DefaultLocale {
		t.Fatalf("nil context should resolve default locale")
	}
}

func TestTFallbacks(t *testing.T) {
	if got := T(LocaleZH, "error.content_not_found"); got != "内容不存在" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T("fr-FR", "error.content_not_found"); got != "Content not found" {
		t.Fatalf("unknown locale should use default, got %s", got)
	}
	if got := T(LocaleEN, "missing.key"); got != "missing.key" {
		t.Fatalf("missing key should echo key, got %s", got)
	}
}

func TestSprintf(t *testing.T) {
	if got := Sprintf(LocaleEN, "error.password_min_length", 8); got != "Password must be at least 8 characters" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestLocaleTablesHaveSameKeys(t *testing.T) {
	for key := range messages[LocaleEN] {
		if _, ok := messages[LocaleZH][key]; !ok {
			t.Fatalf("zh-CN table missing key %s", key)
		}
	}
	for key := range messages[LocaleZH] {
		if _, ok := messages[LocaleEN][key]; !ok {
			t.Fatalf("en-US table missing key %s", key)
		}
	}
}
