// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exchange

import (
	"html/template"
	"net/http"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>File Exchange Server</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
section { margin-bottom: 1.5rem; }
.status { color: #1a7f37; }
.warning { color: #b35900; }
</style>
</head>
<body>
<h1>File Exchange Server</h1>
<p>Server URL: <a href="{{.URL}}">{{.URL}}</a></p>
{{if .QRCode}}<img src="/qrcode.png" alt="QR code for {{.URL}}">{{end}}

{{if .Warning}}<p class="warning">{{.Warning}}</p>{{end}}

<section>
<h2>Upload</h2>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="file" name="file">
<button type="submit">Upload</button>
</form>
{{if .Status}}<p class="status">{{.Status}}</p>{{end}}
{{if .Key}}<p>Share link: <a href="/s/{{.Key}}">/s/{{.Key}}</a></p>{{end}}
</section>

<section>
<h2>Download</h2>
<form action="/download" method="get">
<select name="name">
{{range .Files}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
<button type="submit">Download</button>
<a href="/">Refresh</a>
</form>
</section>
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws/files");
  ws.onmessage = function (ev) {
    var select = document.querySelector("select[name=name]");
    var current = select.value;
    select.innerHTML = "";
    JSON.parse(ev.data).files.forEach(function (name) {
      var opt = document.createElement("option");
      opt.value = name;
      opt.textContent = name;
      opt.selected = name === current;
      select.appendChild(opt);
    });
  };
})();
</script>
</body>
</html>
`))

type pageData struct {
	URL     string
	QRCode  string
	Files   []string
	Status  string
	Key     string
	Warning string
}

func (h *handler) render(w http.ResponseWriter, status int, data pageData) {
	data.URL = h.info.URL
	data.QRCode = h.info.QRCode
	data.Files = h.svc.Refresh()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, data); err != nil {
		fwlog.Errorf("Failed to render page: %v", err)
	}
}
