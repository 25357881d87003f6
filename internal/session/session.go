package session

// Flash 只显示一次的提示消息
type Flash struct {
	Kind    string `json:"kind"` // success/error
	Message string `json:"message"`
}

// Session 服务端保存的会话状态，Page 就是当前页面标志
type Session struct {
	ID     string `json:"id"`
	UserID uint   `json:"user_id,omitempty"`
	Page   Page   `json:"page,omitempty"`
	Flash  *Flash `json:"flash,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s.UserID != 0
}

// Navigate 无条件覆盖当前页面
func (s *Session) Navigate(p Page) {
	s.Page = p
}

// Current 返回应渲染的页面：未设置时未登录为 login、已登录为 dashboard；
// 未登录访问需要登录的页面回到 login，已登录访问 login/register 回到 dashboard
func (s *Session) Current() Page {
	switch {
	case s.Page == "" && !s.Authenticated():
		return PageLogin
	case s.Page == "":
		return PageDashboard
	case s.Page.RequiresAuth() && !s.Authenticated():
		return PageLogin
	case !s.Page.RequiresAuth() && s.Authenticated():
		return PageDashboard
	default:
		return s.Page
	}
}

// Login 记录登录用户并切换到 dashboard
func (s *Session) Login(userID uint) {
	s.UserID = userID
	s.Page = PageDashboard
}

func (s *Session) SetFlash(kind, message string) {
	s.Flash = &Flash{Kind: kind, Message: message}
}

// PopFlash 取出并清除提示消息
func (s *Session) PopFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}
