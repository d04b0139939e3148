package generator

import "html/template"

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="{{ .Lang }}">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1.0"/>
   <title>{{ .Title }}</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <style>
      :root {
         --card-bg: #ffffff;
         --card-border: #999;
         --text-color: #222;
      }
      html, body { height: 100%; margin: 0; font-family: Arial, sans-serif; color: var(--text-color); }
      #map { height: 100%; width: 100%; }
      .custom-marker { background: transparent; border: none; }
      .map-info, .map-legend {
         position: absolute; z-index: 1000;
         background-color: var(--card-bg); padding: 8px 10px;
         border-radius: 5px; border: 1px solid var(--card-border);
         font-size: 13px; box-shadow: 0 1px 4px rgba(0,0,0,0.3);
      }
      .map-info { top: 10px; right: 10px; }
      .map-legend { bottom: 24px; right: 10px; }
      .map-legend h4 { margin: 6px 0 4px; font-size: 13px; }
      .legend-item { display: flex; align-items: center; margin: 2px 0; }
      .legend-glyph { width: 22px; text-align: center; margin-right: 6px; font-size: 16px; }
   </style>
</head>
<body>
   <div id="map"></div>

   <div class="map-info">
      <strong>{{ .Title }}</strong><br>
      <span id="report-count">{{ .Counter }}</span> / {{ .LastUpdated }}
   </div>

   {{ if .Legend }}
   <div class="map-legend" id="legend">
      <h4>{{ index .LegendTitles 0 }}</h4>
      {{ range .LegendHealth }}
      <div class="legend-item"><span class="legend-glyph" style="color:{{ .Color }};">{{ .Glyph }}</span><span>{{ .Label }}</span></div>
      {{ end }}
      <h4>{{ index .LegendTitles 1 }}</h4>
      {{ range .LegendDamage }}
      <div class="legend-item"><span class="legend-glyph">{{ .Glyph }}</span><span>{{ .Label }}</span></div>
      {{ end }}
      <h4>{{ index .LegendTitles 2 }}</h4>
   </div>
   {{ end }}

   <script>
      const markers = {{ .MarkersJSON }};
      const map = L.map('map').setView([{{ .Lat }}, {{ .Lng }}], {{ .Zoom }});

      L.tileLayer({{ .TileURL }}, {
          attribution: {{ .Attribution }}
      }).addTo(map);

      let count = 0;
      function addMarker(m) {
          const icon = m.iconUrl
              ? L.icon({ iconUrl: m.iconUrl, iconSize: [30, 30], iconAnchor: [15, 15], popupAnchor: [0, -15] })
              : L.divIcon({ className: 'custom-marker', html: m.iconHtml, iconSize: [30, 30] });
          L.marker([m.lat, m.lng], { icon: icon }).bindPopup(m.popupHtml).addTo(map);
          count++;
          document.getElementById('report-count').textContent = count;
      }
      markers.forEach(addMarker);
      {{ if .LiveURL }}
      (function listen() {
          const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
          const ws = new WebSocket(proto + '//' + location.host + {{ .LiveURL }});
          ws.onmessage = function (e) {
              try {
                  JSON.parse(e.data).forEach(addMarker);
              } catch (err) {
                  console.error('live update error:', err);
              }
          };
          ws.onclose = function () { setTimeout(listen, 5000); };
      })();
      {{ end }}
   </script>
</body>
</html>
`))
