package styles

// Icons use plain unicode so they render without a patched font.
var (
	IconBell       = "🔔"
	IconDot        = "•"
	IconUnread     = "●"
	IconRead       = "○"
	IconAction     = "→"
	IconMic        = "🎤"
	IconNotifyInfo = "ℹ"
	IconSuccess    = "✔"
	IconWarning    = "⚠"
	IconError      = "✖"
	IconActivity   = "↻"
)
