package report

import (
	"fmt"
	"strings"
)

// Markdown renders the report as Markdown
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# 🚀 Revenium Integration Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Project:** %s\n\n", r.Project)

	b.WriteString("## 📊 Executive Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| **Total Files Analyzed** | %d |\n", r.Summary.FilesAnalyzed)
	fmt.Fprintf(&b, "| **Files with AI Usage** | %d |\n", r.Summary.FilesWithFindings)
	fmt.Fprintf(&b, "| **Total Integration Points** | %d |\n", r.Summary.TotalFindings)
	fmt.Fprintf(&b, "| **Security Issues** | %d |\n", r.Summary.SecurityIssues)
	if r.Summary.HasCostEstimates {
		fmt.Fprintf(&b, "| **Estimated Monthly Cost** | %s |\n", FormatCost(r.Summary.EstimatedMonthlyCost))
	}
	b.WriteString("\n")

	b.WriteString("## 🎯 Key Recommendations\n\n")
	if len(r.Recommendations) == 0 {
		b.WriteString("No AI provider usage found.\n")
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("\n")

	b.WriteString("## 📝 Detection Details\n\n")
	for _, sec := range r.Providers {
		fmt.Fprintf(&b, "### 🤖 %s\n\n", sec.DisplayName)
		for _, f := range sec.Files {
			fmt.Fprintf(&b, "#### 📄 %s\n\n", f.Path)
			for _, finding := range f.Findings {
				fmt.Fprintf(&b, "- %s **Line %d:** %s\n", finding.Severity.Icon(), finding.Line, finding.Message)
				if finding.FixGuidance != "" {
					fmt.Fprintf(&b, "  - **Fix:** `%s`\n", finding.FixGuidance)
				}
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## 🚀 Next Steps\n\n")
	b.WriteString("1. **Install Revenium CLI:** `npm install -g @revenium/cli`\n")
	b.WriteString("2. **Initialize Revenium:** `revenium init`\n")
	b.WriteString("3. **Install middleware packages** (see recommendations above)\n")
	b.WriteString("4. **Apply fixes** with `kestrel fix <file>`\n")
	b.WriteString("5. **Test your integration** and monitor usage in the Revenium dashboard\n\n")

	b.WriteString("## 📚 Resources\n\n")
	b.WriteString("- [Revenium Documentation](https://docs.revenium.io)\n")
	b.WriteString("- [Getting Started Guide](https://docs.revenium.io/getting-started)\n")
	b.WriteString("- [Middleware Integration](https://docs.revenium.io/middleware)\n")
	b.WriteString("- [Support](https://support.revenium.io)\n\n")

	b.WriteString("---\n\n")
	generator := r.Generator
	if generator == "" {
		generator = "kestrel"
	}
	fmt.Fprintf(&b, "*Report %s generated by %s*\n", r.ID, generator)

	return b.String()
}
