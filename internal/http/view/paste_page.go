package view

import (
	"bytes"
	"html/template"
)

// PastePageData provides the dynamic fields required by the paste template.
type PastePageData struct {
	ID      string
	Content string
}

var pastePageTmpl = template.Must(template.New("paste_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>Paste /p/{{.ID}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
			padding: 24px 0;
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(720px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 {
			font-size: 1.3rem;
			margin: 0 0 6px;
		}
		p {
			color: var(--muted);
			margin-top: 0;
		}
		pre {
			margin: 24px 0;
			padding: 18px;
			border-radius: 14px;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			white-space: pre-wrap;
			word-break: break-word;
			font-size: 0.95rem;
			line-height: 1.5;
		}
		.actions {
			display: flex;
			align-items: center;
			gap: 16px;
			flex-wrap: wrap;
		}
		a {
			color: var(--accent);
			text-decoration: none;
		}
		a:hover { color: var(--accent-strong); }
		img.qr {
			border-radius: 10px;
			background: #fff;
			padding: 6px;
		}
		.meta {
			margin-top: 16px;
			font-size: 0.85rem;
			color: rgba(231, 236, 255, 0.65);
		}
	</style>
</head>
<body>
	<div class="card">
		<h1>Paste <strong>/p/{{.ID}}</strong></h1>
		<p>Viewing this page does not spend a view.</p>

		<pre>{{.Content}}</pre>

		<div class="actions">
			<a href="/api/pastes/{{.ID}}">Fetch as JSON (spends a view)</a>
			<a href="/">New paste</a>
		</div>

		<div class="meta">
			<img class="qr" src="/p/{{.ID}}/qr" alt="QR code for this paste" width="128" height="128" />
		</div>
	</div>
</body>
</html>
`))

// RenderPastePage expands the paste page template with the provided data.
func RenderPastePage(data PastePageData) (string, error) {
	var buf bytes.Buffer
	if err := pastePageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MessagePageData provides the fields for the standalone message page.
type MessagePageData struct {
	Title   string
	Heading string
	Detail  string
}

var messagePageTmpl = template.Must(template.New("message_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		:root {
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(480px, 92vw);
			text-align: center;
		}
		p { color: var(--muted); }
		a { color: var(--accent); text-decoration: none; }
	</style>
</head>
<body>
	<div class="card">
		<h1>{{.Heading}}</h1>
		<p>{{.Detail}}</p>
		<p><a href="/">Create a new paste</a></p>
	</div>
</body>
</html>
`))

// RenderMessagePage expands the message page template with the provided data.
func RenderMessagePage(data MessagePageData) (string, error) {
	var buf bytes.Buffer
	if err := messagePageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
