package notify

import (
	"fmt"
	"strconv"
	"strings"

	"ipo_automation/domain/entities"
)

// Format renders a notification as a Telegram Markdown message
func Format(n entities.Notification) string {
	var b strings.Builder

	switch n.Kind {
	case entities.NotifyIPOAvailable:
		b.WriteString("🟢 *IPO available*\n")
		if o := n.Offering; o != nil {
			writeField(&b, "Company", o.CompanyName)
			writeField(&b, "Type", o.ShareType)
			writeField(&b, "Group", o.ShareGroup)
		}

	case entities.NotifyIPONotFound:
		b.WriteString("⚪ *No IPO open*\nThere is no issue to apply for in My ASBA right now.")

	case entities.NotifyApplicationStatus:
		status := entities.ApplicationStatus{Kind: entities.StatusUnknown}
		if n.Status != nil {
			status = *n.Status
		}
		switch status.Kind {
		case entities.StatusSuccess:
			b.WriteString("✅ *IPO application submitted*\n")
		case entities.StatusFailed:
			b.WriteString("❌ *IPO application failed*\n")
		default:
			b.WriteString("❓ *IPO application status unknown*\n")
		}
		if status.Message != "" {
			b.WriteString(status.Message)
		}

	case entities.NotifyOpenForReview:
		b.WriteString("🟡 *IPO open, review required*\n")
		if r := n.Review; r != nil {
			writeField(&b, "Company", r.CompanyName)
			writeField(&b, "Share value per unit", figure(r.ShareValuePerUnit))
			writeField(&b, "Min unit", figure(r.MinUnit))
			writeField(&b, "Reason", r.Reason)
		}

	case entities.NotifyError:
		b.WriteString("⚠️ *Automation error*\n")
		b.WriteString(n.Message)

	default:
		b.WriteString(n.Message)
	}

	if n.Kind != entities.NotifyError && n.Kind != entities.NotifyApplicationStatus && n.Message != "" {
		b.WriteString("\n")
		b.WriteString(n.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func figure(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
