package site

// Page 站点的一个页面
type Page struct {
	Name  string
	Path  string
	Label string
	Title string
}

var (
	PageHome        = Page{Name: "home", Path: "/", Label: "Home", Title: "Welcome to Sales Convert"}
	PageServices    = Page{Name: "services", Path: "/services", Label: "Services", Title: "Our Services"}
	PageCaseStudies = Page{Name: "case_studies", Path: "/case-studies", Label: "Case Studies", Title: "Case Studies"}
	PageBlog        = Page{Name: "blog", Path: "/blog", Label: "Blog", Title: "Blog"}
	PageContact     = Page{Name: "contact", Path: "/contact", Label: "Contact Us", Title: "Contact Us"}
	PageAnalytics   = Page{Name: "analytics", Path: "/analytics", Label: "Analytics", Title: "Analytics Dashboard"}
)

// Pages 侧边栏顺序
var Pages = []Page{PageHome, PageServices, PageCaseStudies, PageBlog, PageContact, PageAnalytics}

type Service struct {
	Name        string
	Description string
}

type CaseStudy struct {
	Campaign string
	Platform string
	ROI      int
}

type PlatformAnalytics struct {
	Platform    string
	Engagements int
	Revenue     float64
}

// 以下都是展示用的固定内容，不来自数据库

var services = []Service{
	{Name: "Social Media Strategy", Description: "Tailored strategies to grow your brand."},
	{Name: "Content Creation", Description: "Engaging posts and videos designed for your target audience."},
	{Name: "Community Engagement", Description: "Direct engagement with your followers to drive loyalty."},
	{Name: "Advertising Campaigns", Description: "Facebook, Instagram, LinkedIn Ads."},
	{Name: "Analytics & Reporting", Description: "Track the success of campaigns and optimize."},
}

var caseStudies = []CaseStudy{
	{Campaign: "Campaign A", Platform: "Instagram", ROI: 150},
	{Campaign: "Campaign B", Platform: "Facebook", ROI: 200},
	{Campaign: "Campaign C", Platform: "LinkedIn", ROI: 180},
}

var articles = []string{
	"How to Build a Successful Social Media Strategy in 2024",
	"Top 10 Social Media Mistakes to Avoid",
	"The Power of Facebook Ads for Small Businesses",
}

var mockAnalytics = []PlatformAnalytics{
	{Platform: "Facebook", Engagements: 1200, Revenue: 5000},
	{Platform: "Instagram", Engagements: 3000, Revenue: 6000},
	{Platform: "LinkedIn", Engagements: 1500, Revenue: 4000},
}

func maxRevenue(rows []PlatformAnalytics) float64 {
	var top float64
	for _, r := range rows {
		if r.Revenue > top {
			top = r.Revenue
		}
	}
	return top
}
