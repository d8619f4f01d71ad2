package webchat

import _ "embed"

// WidgetJS is the default embeddable chat widget.
//
//go:embed widget.js
var WidgetJS []byte
