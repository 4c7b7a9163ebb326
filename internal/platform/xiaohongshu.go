package platform

import (
	"time"

	"trendpress/internal/domain"
)

// Xiaohongshu targets the creator studio at creator.xiaohongshu.com. The
// publish page doubles as the login entry point: opening it without a valid
// session shows the QR login, and only an authenticated visit lands on a
// /publish/ location.
func Xiaohongshu() Adapter {
	return Adapter{
		Platform:               domain.PlatformXiaohongshu,
		AuthURL:                "https://creator.xiaohongshu.com/publish/publish",
		PublishURL:             "https://creator.xiaohongshu.com/publish/publish",
		AuthenticatedPattern:   "*/publish/*",
		UnauthenticatedPattern: "*login*",
		UploadLocators:         []string{`input[type="file"]`},
		TitleLocators:          []string{`input[placeholder*="填写标题"]`, `.c-input_inner`},
		BodyLocators:           []string{`#post-textarea`, `.ql-editor`},
		SubmitLocators:         []string{`.publishBtn`, `button.publish-button`},
		SuccessText:            "发布成功",
		MediaSettle:            3 * time.Second,
		ConfirmTimeout:         5 * time.Minute,
	}
}
