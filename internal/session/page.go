package session

import "fmt"

// Page 当前渲染的 dashboard 页面
type Page string

const (
	PageLogin     Page = "login"
	PageRegister  Page = "register"
	PageDashboard Page = "dashboard"
	PageAddSales  Page = "add_sales"
	PageAnalytics Page = "analytics"
	PageProfile   Page = "profile"
)

// Pages 全部页面
var Pages = []Page{PageLogin, PageRegister, PageDashboard, PageAddSales, PageAnalytics, PageProfile}

// ParsePage 将表单中的页面名转换为 Page
func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if Page(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// RequiresAuth 只有 login/register 允许未登录访问
func (p Page) RequiresAuth() bool {
	return p != PageLogin && p != PageRegister
}

func (p Page) Title() string {
	switch p {
	case PageLogin:
		return "Login"
	case PageRegister:
		return "Register"
	case PageDashboard:
		return "Dashboard"
	case PageAddSales:
		return "Add Sales Data"
	case PageAnalytics:
		return "Analytics"
	case PageProfile:
		return "Profile"
	default:
		return string(p)
	}
}
