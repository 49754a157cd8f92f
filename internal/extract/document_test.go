package extract

import (
	"strings"
	"testing"
)

const announcement = `
<html>
<head><title>关于枧下窝矿区 恢复生产的公告</title><style>.x{color:red}</style></head>
<body>
	<script>var tracking = "停产";</script>
	<h1>公告</h1>
	<p>宜春时代新能源矿业有限公司   枧下窝矿区已于近日恢复生产。</p>
	<p>详见 <a href="/disclosure/2025/notice.PDF">附件</a>
	   <a href="#top">返回</a>
	   <a href="javascript:void(0)">打印</a>
	   <a href="https://www.cninfo.com.cn/new/index">首页</a>
	   <a href="/disclosure/2025/notice.PDF">附件（重复）</a>
	   <a href="https://static.cninfo.com.cn/finalpage/2025/1.docx">补充</a></p>
</body>
</html>`

func TestParse_HTML(t *testing.T) {
	doc, err := Parse(announcement, "https://www.cninfo.com.cn/new/disclosure/detail?id=1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.Title != "关于枧下窝矿区 恢复生产的公告" {
		t.Errorf("Unexpected title %q", doc.Title)
	}

	if !strings.Contains(doc.Text, "宜春时代新能源矿业有限公司 枧下窝矿区已于近日恢复生产") {
		t.Errorf("Expected collapsed body text, got %q", doc.Text)
	}
	if strings.Contains(doc.Text, "tracking") || strings.Contains(doc.Text, "color") {
		t.Errorf("Script or style leaked into text: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "恢复生产的公告") {
		t.Errorf("Head title should not be part of visible text: %q", doc.Text)
	}

	want := []string{
		"https://www.cninfo.com.cn/disclosure/2025/notice.PDF",
		"https://static.cninfo.com.cn/finalpage/2025/1.docx",
	}
	if len(doc.Attachments) != len(want) {
		t.Fatalf("Expected %d attachments, got %v", len(want), doc.Attachments)
	}
	for i, w := range want {
		if doc.Attachments[i] != w {
			t.Errorf("Attachment %d: expected %s, got %s", i, w, doc.Attachments[i])
		}
	}
}

func TestParse_TitleFallsBackToHeading(t *testing.T) {
	doc, err := Parse(`<html><body><h1> 停产 整顿 通知 </h1><p>正文</p></body></html>`, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if doc.Title != "停产 整顿 通知" {
		t.Errorf("Expected heading title, got %q", doc.Title)
	}
}

func TestParse_PlainText(t *testing.T) {
	doc, err := Parse("  Jianxiawo  mine\n resumes\tproduction ", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if doc.Text != "Jianxiawo mine resumes production" {
		t.Errorf("Unexpected text %q", doc.Text)
	}
	if doc.Title != "" || len(doc.Attachments) != 0 {
		t.Errorf("Plain text should have no title or attachments: %+v", doc)
	}
}

func TestParse_RelativeLinksWithoutBase(t *testing.T) {
	doc, err := Parse(`<p><a href="/a.pdf">a</a><a href="http://x.cn/b.pdf">b</a></p>`, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(doc.Attachments) != 1 || doc.Attachments[0] != "http://x.cn/b.pdf" {
		t.Errorf("Expected only the absolute attachment, got %v", doc.Attachments)
	}
}

func TestVisibleText(t *testing.T) {
	got := VisibleText(`<div>CATL <b>Jianxiawo</b> mine</div>`)
	if got != "CATL Jianxiawo mine" {
		t.Errorf("Unexpected text %q", got)
	}

	if got := VisibleText(""); got != "" {
		t.Errorf("Expected empty text, got %q", got)
	}
}
