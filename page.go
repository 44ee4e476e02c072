package worldviewer

import (
	"fmt"
	"io"
	"text/template"
)

// FramePayload is the message pushed to browsers for every frame.
type FramePayload struct {
	Seq       uint64    `json:"seq"`
	SVG       string    `json:"svg"`
	Inventory string    `json:"inventory"`
	History   string    `json:"history"`
	Objective string    `json:"objective"`
	Command   string    `json:"command"`
	Transform Transform `json:"transform"`
	Error     string    `json:"error,omitempty"`
}

// BuildPayload paints a frame for the browser.
func BuildPayload(frame *Frame, icons IconSet) (FramePayload, error) {
	p := FramePayload{Seq: frame.Seq}
	if frame.Err != nil {
		p.Error = frame.Err.Error()
	}
	if frame.State != nil {
		p.History = frame.State.History
		p.Objective = frame.State.Objective
		p.Command = frame.State.Command
	}
	if frame.Scene == nil {
		return p, nil
	}
	svg, err := RenderSVG(frame.Scene, icons)
	if err != nil {
		return p, fmt.Errorf("paint graph: %w", err)
	}
	inv, err := RenderInventory(frame.Scene.Inventory, icons)
	if err != nil {
		return p, fmt.Errorf("paint inventory: %w", err)
	}
	p.SVG, p.Inventory, p.Transform = svg, inv, frame.Scene.Transform
	return p, nil
}

type pageData struct {
	Title        string
	State        string
	TemplatePath string
	Graph        string
	Inventory    string
}

// Values are escaped by the caller; the state attribute uses &quot; the way
// host pages always have.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="{{.TemplatePath}}/static/css/viewer.css">
    <style>
        body { font-family: system-ui; margin: 0; display: flex; height: 100vh; }
        .sidebar { width: 320px; overflow: auto; padding: 1rem; background: #f7f7f7; }
        .graph { flex: 1; overflow: hidden; }
        .render-error { display: none; background: #fdd; color: #900; padding: .5rem; }
        .rotate { transform: rotate(180deg); }
        svg#world { width: 100%; height: 100%; cursor: grab; }
    </style>
</head>
<body>
    <div class="sidebar">
        <div class="render-error"></div>
        <div class="inventory-container">{{.Inventory}}</div>
        <div id="command-scroll-div"><div class="history"></div></div>
    </div>
    <div class="graph">{{.Graph}}</div>
    <script state="{{.State}}" template_path="{{.TemplatePath}}">
(function () {
    const self = document.currentScript;
    let state = JSON.parse(self.getAttribute('state').replace(/&quot;/g, '"'));
    let transform = null;
    let moved = false;
    let drag = null;
    let timer = null;

    function post(path, body) {
        return fetch(path, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body)});
    }
    function wrapper() { return document.querySelector('g.wrapper'); }
    function applyTransform() {
        const g = wrapper();
        if (g && transform) {
            g.setAttribute('transform', 'translate(' + transform.x + ',' + transform.y + ') scale(' + transform.k + ')');
        }
    }
    function reportTransform() {
        moved = true;
        clearTimeout(timer);
        timer = setTimeout(() => post('/api/transform', transform), 150);
    }
    function history(p) {
        const h = document.querySelector('.history');
        h.innerHTML = p.history !== '' ? p.history : '<p class="objective-text">' + p.objective + '</p>';
        if (p.command !== '') {
            const d = document.getElementById('command-scroll-div');
            d.scrollTop = d.scrollHeight;
        }
    }
    function show(p) {
        const banner = document.querySelector('.render-error');
        banner.style.display = p.error ? 'block' : 'none';
        banner.textContent = p.error || '';
        if (p.svg) {
            document.querySelector('.graph').innerHTML = p.svg;
            document.querySelector('.inventory-container').innerHTML = p.inventory;
            if (!moved || !transform) {
                transform = p.transform;
            }
            applyTransform();
        }
        history(p);
        bind();
    }
    function bind() {
        const svg = document.querySelector('svg#world');
        if (!svg || svg.dataset.bound) { return; }
        svg.dataset.bound = '1';
        svg.addEventListener('wheel', (e) => {
            e.preventDefault();
            if (!transform) { return; }
            const k = Math.min(3, Math.max(0.1, transform.k * Math.pow(2, -e.deltaY * (e.deltaMode ? 120 : 1) / 1000)));
            transform = {x: e.offsetX - (e.offsetX - transform.x) * k / transform.k, y: e.offsetY - (e.offsetY - transform.y) * k / transform.k, k: k};
            applyTransform();
            reportTransform();
        });
        svg.addEventListener('mousedown', (e) => { drag = {x: e.clientX, y: e.clientY}; });
    }
    window.addEventListener('mouseup', () => { drag = null; });
    window.addEventListener('mousemove', (e) => {
        if (!drag || !transform) { return; }
        transform = {x: transform.x + e.clientX - drag.x, y: transform.y + e.clientY - drag.y, k: transform.k};
        drag = {x: e.clientX, y: e.clientY};
        applyTransform();
        reportTransform();
    });
    document.addEventListener('click', (e) => {
        const row = e.target.closest('tr.item');
        if (!row || !row.querySelector(':scope > td > .col-container > .col-container-right')) { return; }
        e.stopPropagation();
        post('/api/toggle', {item: row.dataset.item});
    });
    function resize() {
        const g = document.querySelector('.graph');
        post('/api/viewport', {w: g.clientWidth, h: g.clientHeight});
    }
    window.addEventListener('resize', resize);
    resize();

    const src = new EventSource('/subscribe');
    src.onmessage = (e) => show(JSON.parse(e.data));
    history(state);
    bind();
    const g = wrapper();
    if (g) {
        const m = /translate\(([-\d.e]+),([-\d.e]+)\) scale\(([-\d.e]+)\)/.exec(g.getAttribute('transform'));
        if (m) { transform = {x: +m[1], y: +m[2], k: +m[3]}; }
    }
})();
    </script>
</body>
</html>
`))

// WritePage writes the host page with the snapshot embedded in the script
// tag and the current frame pre-rendered.
func WritePage(w io.Writer, title string, state []byte, templatePath string, payload FramePayload) error {
	return pageTemplate.Execute(w, pageData{
		Title:        esc(title),
		State:        EscapeEmbedded(state),
		TemplatePath: esc(templatePath),
		Graph:        payload.SVG,
		Inventory:    payload.Inventory,
	})
}
