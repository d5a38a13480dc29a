package ingest

import "github.com/chemtalent/jobchain/internal/sheet"

const (
	TemplateFileName  = "job-template.xlsx"
	TemplateSheetName = "JobTemplate"
)

// TemplateHeaders follow the Liepin export layout plus the two list columns.
var TemplateHeaders = []string{
	"职位名称", "薪资范围", "公司名称", "工作地点", "经验要求", "学历要求",
	"公司规模", "行业类型", "岗位要求", "工作职责", "岗位详情链接",
}

var templateRows = [][]any{
	{"有机合成工程师", "8-13k", "某西安石化公司", "西安", "1年以上", "硕士", "A轮", "石化",
		"有机化学相关专业\n熟悉多步合成路线设计", "负责中间体合成\n撰写实验记录", "https://www.liepin.com/job/example1"},
	{"药物化学研究员", "30-45k", "某重庆化工上市公司", "重庆", "5年以上", "博士", "已上市", "化工",
		"药物化学博士\n有新药项目经验", "主导先导化合物优化", "https://www.liepin.com/job/example2"},
	{"分析化学工程师", "15-25k", "某上海生物科技公司", "上海-浦东新区", "3-5年", "统招本科", "B轮", "生物技术",
		"熟练使用HPLC、GC", "方法开发与验证\n稳定性研究", "https://www.liepin.com/job/example3"},
}

// Template renders the downloadable import template with example rows.
func Template() ([]byte, error) {
	return sheet.Encode(TemplateSheetName, TemplateHeaders, templateRows)
}
