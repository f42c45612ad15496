package view

import (
	"bytes"
	"html/template"
)

// HomePageData provides the dynamic fields required by the home template.
type HomePageData struct {
	Title string
}

var homePageTmpl = template.Must(template.New("home_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{if .Title}}{{.Title}}{{else}}pastebin{{end}}</title>
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
			width: min(640px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 {
			font-size: 1.5rem;
			margin-bottom: 6px;
		}
		p {
			color: var(--muted);
			margin-top: 0;
		}
		textarea {
			width: 100%;
			min-height: 180px;
			margin: 16px 0;
			padding: 14px;
			border-radius: 14px;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			color: var(--text);
			font-family: ui-monospace, monospace;
			font-size: 0.95rem;
			resize: vertical;
		}
		.limits {
			display: flex;
			gap: 12px;
			flex-wrap: wrap;
		}
		.limits label {
			flex: 1;
			min-width: 180px;
			font-size: 0.85rem;
			color: var(--muted);
		}
		.limits input {
			display: block;
			width: 100%;
			margin-top: 6px;
			padding: 10px 12px;
			border-radius: 10px;
			background: rgba(255, 255, 255, 0.06);
			border: 1px solid var(--border);
			color: var(--text);
		}
		button {
			margin-top: 24px;
			padding: 0 28px;
			height: 48px;
			border: none;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			font-size: 1rem;
			cursor: pointer;
			transition: transform 0.15s ease, opacity 0.15s ease;
		}
		button:hover {
			transform: translateY(-1px);
			opacity: 0.92;
		}
		#result {
			margin-top: 20px;
			padding: 14px;
			border-radius: 12px;
			display: none;
			word-break: break-all;
		}
		#result.ok {
			display: block;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
		}
		#result.err {
			display: block;
			background: rgba(248, 113, 113, 0.08);
			border: 1px solid rgba(248, 113, 113, 0.35);
		}
		#result a { color: var(--accent); }
	</style>
</head>
<body>
	<div class="card">
		<h1>Share a paste</h1>
		<p>Text only, optionally limited by time or number of reads.</p>

		<textarea id="content" placeholder="Paste your text here..."></textarea>

		<div class="limits">
			<label>Expires after (seconds)
				<input id="ttl" type="number" min="1" placeholder="never" />
			</label>
			<label>Max views
				<input id="maxviews" type="number" min="1" placeholder="unlimited" />
			</label>
		</div>

		<button id="submit">Create paste</button>
		<div id="result"></div>
	</div>

	<script>
		(function() {
			var result = document.getElementById("result");

			function show(cls, html) {
				result.className = cls;
				result.innerHTML = html;
			}

			document.getElementById("submit").addEventListener("click", function() {
				var payload = { content: document.getElementById("content").value };
				var ttl = document.getElementById("ttl").value;
				var maxViews = document.getElementById("maxviews").value;
				if (ttl) { payload.ttl_seconds = parseInt(ttl, 10); }
				if (maxViews) { payload.max_views = parseInt(maxViews, 10); }

				fetch("/api/pastes", {
					method: "POST",
					headers: { "Content-Type": "application/json" },
					body: JSON.stringify(payload)
				}).then(function(res) {
					return res.json().then(function(body) { return { ok: res.ok, body: body }; });
				}).then(function(out) {
					if (!out.ok) {
						show("err", out.body.error || "request failed");
						return;
					}
					var url = out.body.url;
					show("ok", 'Paste created: <a href="' + url + '">' + url + "</a>");
				}).catch(function() {
					show("err", "request failed");
				});
			});
		})();
	</script>
</body>
</html>
`))

// RenderHomePage expands the home page template with the provided data.
func RenderHomePage(data HomePageData) (string, error) {
	var buf bytes.Buffer
	if err := homePageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
