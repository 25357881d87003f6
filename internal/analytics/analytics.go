// Package analytics 对单个用户的销售记录做时间窗口过滤和分组汇总
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"salesconvert.example/sales-convert/internal/models"
)

// Window 回溯时间窗口
type Window string

const (
	Window7Days  Window = "7d"
	Window30Days Window = "30d"
	Window90Days Window = "90d"
	WindowAll    Window = "all"
)

// Windows 页面下拉框中的顺序
var Windows = []Window{Window7Days, Window30Days, Window90Days, WindowAll}

// ParseWindow 空字符串视为 all
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return WindowAll, nil
	}
	for _, w := range Windows {
		if Window(s) == w {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Days 返回窗口天数，all 返回 0
func (w Window) Days() int {
	switch w {
	case Window7Days:
		return 7
	case Window30Days:
		return 30
	case Window90Days:
		return 90
	default:
		return 0
	}
}

func (w Window) Label() string {
	switch w {
	case Window7Days:
		return "Last 7 days"
	case Window30Days:
		return "Last 30 days"
	case Window90Days:
		return "Last 90 days"
	default:
		return "All time"
	}
}

// Boundary 返回窗口起点（当天零点），all 返回零值
func (w Window) Boundary(now time.Time) time.Time {
	days := w.Days()
	if days == 0 {
		return time.Time{}
	}
	return models.DateOnly(now).AddDate(0, 0, -days)
}

// Filter 保留日期不早于窗口起点的记录，起点当天的记录保留
func Filter(records []models.SalesRecord, w Window, now time.Time) []models.SalesRecord {
	if w.Days() == 0 {
		return records
	}
	boundary := w.Boundary(now)
	out := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		if r.Date.Before(boundary) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CampaignRevenue 单个活动的收入
type CampaignRevenue struct {
	Campaign string  `json:"campaign"`
	Revenue  float64 `json:"revenue"`
}

// PlatformStats 单个渠道的收入、均值和条数
type PlatformStats struct {
	Platform models.Platform `json:"platform"`
	Revenue  float64         `json:"revenue"`
	Mean     float64         `json:"mean"`
	Count    int             `json:"count"`
}

// DailyRevenue 单日收入
type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// Summary 汇总结果
type Summary struct {
	TotalRevenue      float64           `json:"total_revenue"`
	MeanRevenue       float64           `json:"mean_revenue"`
	Count             int               `json:"count"`
	DistinctCampaigns int               `json:"distinct_campaigns"`
	ByCampaign        []CampaignRevenue `json:"by_campaign"`
	ByPlatform        []PlatformStats   `json:"by_platform"`
}

// Summarize 计算总收入、平均收入、活动数以及按活动、渠道的分组
func Summarize(records []models.SalesRecord) Summary {
	s := Summary{
		Count:      len(records),
		ByCampaign: []CampaignRevenue{},
		ByPlatform: []PlatformStats{},
	}
	if len(records) == 0 {
		return s
	}

	all := make([]float64, 0, len(records))
	byCampaign := map[string]float64{}
	byPlatform := map[models.Platform][]float64{}
	for _, r := range records {
		all = append(all, r.Revenue)
		byCampaign[r.Campaign] += r.Revenue
		byPlatform[r.Platform] = append(byPlatform[r.Platform], r.Revenue)
	}

	// 输入非空时 stats 不会返回错误
	s.TotalRevenue, _ = stats.Sum(all)
	s.MeanRevenue, _ = stats.Mean(all)
	s.DistinctCampaigns = len(byCampaign)

	for name, revenue := range byCampaign {
		s.ByCampaign = append(s.ByCampaign, CampaignRevenue{Campaign: name, Revenue: revenue})
	}
	sort.Slice(s.ByCampaign, func(i, j int) bool {
		a, b := s.ByCampaign[i], s.ByCampaign[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Campaign < b.Campaign
	})

	for platform, values := range byPlatform {
		sum, _ := stats.Sum(values)
		mean, _ := stats.Mean(values)
		s.ByPlatform = append(s.ByPlatform, PlatformStats{
			Platform: platform,
			Revenue:  sum,
			Mean:     mean,
			Count:    len(values),
		})
	}
	sort.Slice(s.ByPlatform, func(i, j int) bool {
		return s.ByPlatform[i].Platform < s.ByPlatform[j].Platform
	})

	return s
}

// Daily 按日期升序返回每日收入，用于趋势图
func Daily(records []models.SalesRecord) []DailyRevenue {
	byDay := map[string]float64{}
	for _, r := range records {
		byDay[r.Date.UTC().Format("2006-01-02")] += r.Revenue
	}
	out := make([]DailyRevenue, 0, len(byDay))
	for d, revenue := range byDay {
		out = append(out, DailyRevenue{Date: d, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
