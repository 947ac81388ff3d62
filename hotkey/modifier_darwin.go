package hotkey

// platformPrimaryModifier is the key gohook expects for
// CommandOrControl on this platform.
const platformPrimaryModifier = "cmd"
