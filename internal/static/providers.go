package static

import (
	"strings"

	"github.com/optimode/deliverkit/types"
)

// providerEntry maps an MX hostname substring to a provider record.
// The table is ordered and the first match wins, so more specific
// substrings must come before the generic ones they contain
// (olc.protection.outlook.com before protection.outlook.com).
type providerEntry struct {
	substring string
	provider  types.MailProvider
}

var providerTable = []providerEntry{
	{"aspmx.l.google.com", types.MailProvider{Name: "Google Workspace", Type: "business"}},
	{"googlemail.com", types.MailProvider{Name: "Gmail", Type: "free"}},
	{"gmail-smtp-in.l.google.com", types.MailProvider{Name: "Gmail", Type: "free"}},
	{"google.com", types.MailProvider{Name: "Google Workspace", Type: "business"}},
	{"olc.protection.outlook.com", types.MailProvider{Name: "Outlook.com", Type: "free"}},
	{"eo.outlook.com", types.MailProvider{Name: "Outlook.com", Type: "free"}},
	{"protection.outlook.com", types.MailProvider{Name: "Microsoft 365", Type: "business"}},
	{"hotmail.com", types.MailProvider{Name: "Outlook.com", Type: "free"}},
	{"outlook.com", types.MailProvider{Name: "Microsoft 365", Type: "business"}},
	{"mx.yandex.net", types.MailProvider{Name: "Yandex Mail", Type: "free"}},
	{"yandex.net", types.MailProvider{Name: "Yandex 360", Type: "business"}},
	{"yahoodns.net", types.MailProvider{Name: "Yahoo Mail", Type: "free"}},
	{"zohomail", types.MailProvider{Name: "Zoho Mail", Type: "business"}},
	{"zoho.com", types.MailProvider{Name: "Zoho Mail", Type: "business"}},
	{"zoho.eu", types.MailProvider{Name: "Zoho Mail", Type: "business"}},
	{"pphosted.com", types.MailProvider{Name: "Proofpoint", Type: "business"}},
	{"ppe-hosted.com", types.MailProvider{Name: "Proofpoint Essentials", Type: "business"}},
	{"mimecast.com", types.MailProvider{Name: "Mimecast", Type: "business"}},
	{"mimecast.co.za", types.MailProvider{Name: "Mimecast", Type: "business"}},
	{"barracudanetworks.com", types.MailProvider{Name: "Barracuda", Type: "business"}},
	{"messagelabs.com", types.MailProvider{Name: "Symantec MessageLabs", Type: "business"}},
	{"iphmx.com", types.MailProvider{Name: "Cisco Secure Email", Type: "business"}},
	{"mailgun.org", types.MailProvider{Name: "Mailgun", Type: "business"}},
	{"sendgrid.net", types.MailProvider{Name: "SendGrid", Type: "business"}},
	{"amazonaws.com", types.MailProvider{Name: "Amazon WorkMail", Type: "business"}},
	{"mail.protection.cn", types.MailProvider{Name: "Microsoft 365 China", Type: "business"}},
	{"qq.com", types.MailProvider{Name: "Tencent QQ Mail", Type: "free"}},
	{"mxhichina.com", types.MailProvider{Name: "Alibaba Mail", Type: "business"}},
	{"naver.com", types.MailProvider{Name: "Naver Mail", Type: "free"}},
	{"daum.net", types.MailProvider{Name: "Daum Mail", Type: "free"}},
	{"icloud.com", types.MailProvider{Name: "iCloud Mail", Type: "free"}},
	{"emailsrvr.com", types.MailProvider{Name: "Rackspace Email", Type: "business"}},
	{"secureserver.net", types.MailProvider{Name: "GoDaddy Email", Type: "business"}},
	{"ovh.net", types.MailProvider{Name: "OVH Mail", Type: "business"}},
	{"gandi.net", types.MailProvider{Name: "Gandi Mail", Type: "business"}},
	{"migadu.com", types.MailProvider{Name: "Migadu", Type: "business"}},
	{"fastmail.com", types.MailProvider{Name: "Fastmail", Type: "business"}},
	{"messagingengine.com", types.MailProvider{Name: "Fastmail", Type: "business"}},
	{"protonmail.ch", types.MailProvider{Name: "Proton Mail", Type: "business"}},
	{"mail.com", types.MailProvider{Name: "Mail.com", Type: "free"}},
	{"gmx.net", types.MailProvider{Name: "GMX", Type: "free"}},
	{"mail.ru", types.MailProvider{Name: "Mail.ru", Type: "free"}},
}

// DetectProvider returns the provider record of the first MX host that
// contains a known substring, or nil when no host matches.
func DetectProvider(mxHosts []string) *types.MailProvider {
	for _, host := range mxHosts {
		h := strings.ToLower(strings.TrimSpace(host))
		for _, e := range providerTable {
			if strings.Contains(h, e.substring) {
				p := e.provider
				return &p
			}
		}
	}
	return nil
}
