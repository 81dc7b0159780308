package ui

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/core"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/robgonnella/aegis/internal/scan"
	"github.com/robgonnella/aegis/internal/ui/component"
	"github.com/robgonnella/aegis/internal/ui/key"
)

var viewEvents = []event.EventType{
	event.DeviceUpdateEventType,
	event.ScanStatusEventType,
	event.IsolationEventType,
	event.AlertEventType,
	event.ErrorEventType,
	event.FatalErrorEventType,
}

type view struct {
	ctx           context.Context
	cancel        context.CancelFunc
	app           *tview.Application
	root          *tview.Flex
	pages         *tview.Pages
	header        *component.Header
	deviceTable   *component.DeviceTable
	eventTable    *component.EventTable
	nicknameInput *component.ActionInput
	appCore       *core.Core
	eventChan     chan event.Event
	listenerIDs   []int
	focusedName   string
	showingModal  bool
	showingInput  bool
	nicknameMAC   string
	log           logger.Logger
}

func newView(appCore *core.Core) *view {
	ctx, cancel := context.WithCancel(context.Background())

	networkInfo := appCore.NetworkInfo()

	v := &view{
		ctx:         ctx,
		cancel:      cancel,
		app:         tview.NewApplication(),
		appCore:     appCore,
		eventChan:   make(chan event.Event, 100),
		focusedName: "devices",
		log:         logger.New(),
	}

	v.header = component.NewHeader(
		networkInfo.UserIP.String(),
		networkInfo.Gateway.String(),
		networkInfo.Cidr,
	)
	v.deviceTable = component.NewDeviceTable(
		classify.ThresholdsFromConfig(appCore.Conf().Risk),
	)
	v.eventTable = component.NewEventTable()
	v.nicknameInput = component.NewActionInput(v.onNicknameSubmit, v.hideNicknameInput)

	v.pages = tview.NewPages()
	v.pages.AddPage("devices", v.deviceTable.Primitive(), true, true)
	v.pages.AddPage("events", v.eventTable.Primitive(), true, false)

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header.Primitive(), v.header.Height(), 1, false).
		AddItem(v.pages, 0, 1, true)

	for _, t := range viewEvents {
		v.listenerIDs = append(v.listenerIDs, appCore.RegisterEventListener(t, v.eventChan))
	}

	return v
}

func (v *view) focus() {
	v.pages.SwitchToPage(v.focusedName)

	if v.focusedName == "events" {
		v.app.SetFocus(v.eventTable.Primitive())
		return
	}

	v.app.SetFocus(v.deviceTable.Primitive())
}

func (v *view) toggleViews() {
	if v.focusedName == "devices" {
		v.focusedName = "events"
	} else {
		v.focusedName = "devices"
	}

	v.focus()
}

func (v *view) bindKeys() {
	v.app.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		if evt.Key() == key.KeyCtrlC {
			v.stop()
			return nil
		}

		// modals and inputs handle their own keys
		if v.showingModal || v.showingInput {
			return evt
		}

		switch evt.Key() {
		case key.KeyTab:
			v.toggleViews()
			return nil
		case key.KeyRune:
		default:
			return evt
		}

		switch evt.Rune() {
		case key.RuneScan:
			v.onScan(false)
		case key.RuneForceScan:
			v.confirm("Clear every stored device and rescan?", func() { v.onScan(true) })
		case key.RuneAutoScan:
			v.onToggleAutoScan()
		case key.RuneBlock:
			v.onToggleBlock()
		case key.RuneBlockAll:
			v.confirm("Block every device on the network except this host and the gateway?", v.onBlockAll)
		case key.RuneUnblockAll:
			v.onUnblockAll()
		case key.RuneNickname:
			v.showNicknameInput()
		case key.RuneToggleViews:
			v.toggleViews()
		default:
			return evt
		}

		return nil
	})
}

func (v *view) onScan(force bool) {
	var err error

	if force {
		_, err = v.appCore.ForceScan()
	} else {
		_, err = v.appCore.Scan()
	}

	if err != nil {
		v.showError(err)
	}
}

func (v *view) onToggleAutoScan() {
	if v.appCore.AutoScanStatus().Enabled {
		v.appCore.StopAutoScan()
	} else {
		v.appCore.StartAutoScan(0)
	}

	v.header.SetAutoScanStatus(v.appCore.AutoScanStatus())
}

func (v *view) onToggleBlock() {
	ip, _, ok := v.deviceTable.Selected()

	if !ok {
		return
	}

	if v.appCore.BlockStatus(ip).State != isolation.StateInactive {
		v.appCore.Unblock(ip)
		return
	}

	if _, err := v.appCore.Block(ip); err != nil {
		v.showError(err)
	}
}

func (v *view) onBlockAll() {
	if _, err := v.appCore.BlockAll(); err != nil {
		v.showError(err)
	}
}

func (v *view) onUnblockAll() {
	stopped := v.appCore.UnblockAll()
	v.log.Info().Strs("targets", stopped).Msg("unblocking all devices")
}

func (v *view) showNicknameInput() {
	_, mac, ok := v.deviceTable.Selected()

	if !ok {
		return
	}

	v.nicknameMAC = mac
	v.nicknameInput.Prompt("nickname for " + mac + ":")
	v.root.AddItem(v.nicknameInput.Primitive(), 3, 1, false)
	v.showingInput = true
	v.app.SetFocus(v.nicknameInput.Primitive())
}

func (v *view) hideNicknameInput() {
	v.root.RemoveItem(v.nicknameInput.Primitive())
	v.showingInput = false
	v.focus()
}

func (v *view) onNicknameSubmit(text string) {
	v.hideNicknameInput()

	text = strings.TrimSpace(text)

	if text == "" {
		return
	}

	if _, err := v.appCore.SetNickname(v.nicknameMAC, text); err != nil {
		v.showError(err)
	}
}

func (v *view) confirm(message string, onConfirm func()) {
	v.showModal(component.NewConfirmModal(
		message,
		func() {
			v.hideModal()
			onConfirm()
		},
		v.hideModal,
	))
}

func (v *view) showError(err error) {
	v.log.Error().Err(err).Msg("action failed")
	v.showModal(component.NewErrorModal(err, v.hideModal))
}

func (v *view) showModal(modal *component.Modal) {
	v.pages.AddPage("modal", modal.Primitive(), true, true)
	v.showingModal = true
	v.app.SetFocus(modal.Primitive())
}

func (v *view) hideModal() {
	v.pages.RemovePage("modal")
	v.showingModal = false
	v.focus()
}

func (v *view) refreshDevices() {
	devices, err := v.appCore.Devices()

	if err != nil {
		v.log.Error().Err(err).Msg("failed to load devices")
		return
	}

	v.deviceTable.UpdateTable(devices)
}

func (v *view) handleEvent(evt event.Event) {
	switch payload := evt.Payload.(type) {
	case scan.Status:
		v.header.SetScanStatus(payload)
	case isolation.Status:
		v.header.SetBlocked(v.appCore.Blocked())
	}

	if evt.Type == event.DeviceUpdateEventType {
		v.refreshDevices()
	}

	if err, ok := evt.Payload.(error); ok && evt.Type == event.FatalErrorEventType && !v.showingModal {
		v.showError(err)
	}

	v.eventTable.UpdateTable(evt)
}

func (v *view) processBackgroundEvents() {
	go func() {
		for {
			select {
			case <-v.ctx.Done():
				return
			case evt := <-v.eventChan:
				v.app.QueueUpdateDraw(func() {
					v.handleEvent(evt)
				})
			}
		}
	}()
}

func (v *view) stop() {
	for _, id := range v.listenerIDs {
		v.appCore.RemoveEventListener(id)
	}

	v.cancel()
	v.app.Stop()
}

func (v *view) run() error {
	v.bindKeys()
	v.processBackgroundEvents()
	v.refreshDevices()
	v.header.SetAutoScanStatus(v.appCore.AutoScanStatus())

	// restore every isolated device once the interface exits
	defer v.appCore.Close()

	if _, err := v.appCore.Scan(); err != nil {
		v.log.Error().Err(err).Msg("initial scan failed to start")
	}

	return v.app.SetRoot(v.root, true).EnableMouse(true).Run()
}
