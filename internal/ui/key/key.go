package key

import "github.com/gdamore/tcell/v2"

/**
 * Keys and Runes!
 */

const (
	RuneScan        = 's'
	RuneForceScan   = 'f'
	RuneAutoScan    = 'a'
	RuneBlock       = 'b'
	RuneBlockAll    = 'B'
	RuneUnblockAll  = 'u'
	RuneNickname    = 'n'
	RuneToggleViews = 'e'
)

const (
	KeyCtrlC = tcell.KeyCtrlC
	KeyEnter = tcell.KeyEnter
	KeyEsc   = tcell.KeyEsc
	KeyTab   = tcell.KeyTab
	KeyRune  = tcell.KeyRune
)
