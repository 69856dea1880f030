package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazystreak/internal/app"
	"github.com/Joseda-hg/lazystreak/internal/model"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewHeatmap = "heatmap"
	viewTasks   = "tasks"
	viewBadges  = "badges"
	viewHistory = "history"
	viewForm    = "form"
	viewHelp    = "help"
	viewConfirm = "confirm"
)

type UI struct {
	session *app.Session
	gui     *gocui.Gui

	dashboard   app.Dashboard
	tasks       []model.Task
	history     []model.HistoryEntry
	historyNote string

	filter          model.StatusFilter
	selectedTask    int
	selectedHistory int
	focus           string

	form       *formState
	formEditor *formEditor
	confirm    *confirmState
	helpActive bool
	status     string
}

type formState struct {
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

// confirmState holds the task awaiting a y/n answer before deletion.
type confirmState struct {
	taskID      string
	description string
}

func Run(session *app.Session) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(session)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.load(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(session *app.Session) *UI {
	ui := &UI{
		session: session,
		filter:  model.FilterAll,
		focus:   viewTasks,
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'a', gocui.ModNone, u.addTask); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'd', gocui.ModNone, u.deleteTask); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'x', gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'f', gocui.ModNone, u.cycleFilter); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'h', gocui.ModNone, u.refreshHistory); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '?', gocui.ModNone, u.toggleHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, u.switchFocus); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '1', gocui.ModNone, u.focusHeatmap); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '2', gocui.ModNone, u.focusTasks); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '3', gocui.ModNone, u.focusBadges); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '4', gocui.ModNone, u.focusHistory); err != nil {
		return err
	}
	for _, name := range []string{viewTasks, viewHistory} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeySpace, gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyEnter, gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlJ, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, 'y', gocui.ModNone, u.confirmDelete); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, 'Y', gocui.ModNone, u.confirmDelete); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, 'n', gocui.ModNone, u.cancelDelete); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, gocui.KeyEsc, gocui.ModNone, u.cancelDelete); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, 'q', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewTasks, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, viewTasks, opts)
	}}); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewHistory, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, viewHistory, opts)
	}}); err != nil {
		return err
	}
	if err := u.bindMouseScroll(gui); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := maxY - 2
	if footerY1 < 1 {
		footerY1 = 1
	}
	footerY0 := footerY1 - 2
	if footerY0 < 1 {
		footerY0 = 1
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Title = ""
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)

	heatmapY0 := bodyTop
	heatmapY1 := heatmapY0 + l.heatmapHeight - 1
	heatmapView, err := gui.SetView(viewHeatmap, 0, heatmapY0, maxX-1, heatmapY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		heatmapView.Title = "1 Activity"
		heatmapView.TitleColor = gocui.ColorGreen
	}
	applyViewStyle(heatmapView, u.focus == viewHeatmap, false)
	u.renderHeatmap(heatmapView, maxX-2)

	listY0 := heatmapY1 + 1
	listX1 := l.listWidth - 1
	rightX0 := listX1 + 1
	if rightX0 >= maxX {
		rightX0 = listX1
	}
	badgesY1 := listY0 + l.badgesHeight - 1

	tasksView, err := gui.SetView(viewTasks, 0, listY0, listX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.TitleColor = gocui.ColorRed
	}
	tasksView.Title = fmt.Sprintf("2 Tasks [%s]", u.filter)
	applyViewStyle(tasksView, u.focus == viewTasks, true)
	u.renderTaskList(tasksView, u.focus == viewTasks)

	badgesView, err := gui.SetView(viewBadges, rightX0, listY0, maxX-1, badgesY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		badgesView.Title = "3 Badges"
		badgesView.TitleColor = gocui.ColorYellow
	}
	applyViewStyle(badgesView, u.focus == viewBadges, false)
	u.renderBadges(badgesView)

	historyView, err := gui.SetView(viewHistory, rightX0, badgesY1+1, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "4 History"
	}
	applyViewStyle(historyView, u.focus == viewHistory, true)
	u.renderHistory(historyView, u.focus == viewHistory)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.confirm != nil {
		if err := u.showConfirm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewConfirm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.form != nil

	return nil
}

type layout struct {
	listWidth     int
	heatmapHeight int
	badgesHeight  int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 12)

	// Month row plus seven weekday rows inside a frame.
	heatmapHeight := 10
	if heatmapHeight > safeHeight-4 {
		heatmapHeight = max(safeHeight-4, 3)
	}

	listWidth := safeWidth * 3 / 5
	if listWidth < 30 {
		listWidth = 30
	}
	if listWidth > safeWidth-18 {
		listWidth = safeWidth / 2
	}

	rest := safeHeight - heatmapHeight
	badgesHeight := rest / 3
	if badgesHeight < 4 {
		badgesHeight = 4
	}

	return layout{
		listWidth:     listWidth,
		heatmapHeight: heatmapHeight,
		badgesHeight:  badgesHeight,
	}
}

func (u *UI) load() error {
	ctx := context.Background()

	dashboard, err := u.session.Dashboard(ctx)
	if err != nil {
		return err
	}
	tasks, err := u.session.Tasks(ctx, u.filter)
	if err != nil {
		return err
	}

	u.dashboard = dashboard
	u.tasks = tasks
	if u.selectedTask >= len(u.tasks) {
		u.selectedTask = max(len(u.tasks)-1, 0)
	}

	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	u.historyNote = ""
	selected := u.selectedTaskEntry()
	if selected == nil {
		u.history = nil
		return nil
	}

	history, err := u.session.History(context.Background(), selected.ID)
	if errors.Is(err, app.ErrHistoryUnsupported) {
		u.history = nil
		u.historyNote = "History is not kept by this backend"
		return nil
	}
	if err != nil {
		return err
	}
	u.history = history
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	fmt.Fprint(view, formatStatsLine(u.dashboard.Stats, u.filter))
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | x/space toggle done | d delete | f filter | h history | r reload")
	fmt.Fprintln(view, "tab cycle | 1-4 panes | j/k move | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderHeatmap(view *gocui.View, width int) {
	view.Clear()
	fmt.Fprint(view, strings.Join(heatmapLines(u.dashboard.Grid, width), "\n"))
}

func (u *UI) renderTaskList(view *gocui.View, focused bool) {
	view.Clear()
	if len(u.tasks) == 0 {
		fmt.Fprint(view, "No tasks yet, press a to add one")
		return
	}
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selectedTask {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task, u.dashboard.Today))
	}
	if focused {
		view.SetCursor(0, min(u.selectedTask, len(u.tasks)-1))
	}
}

func (u *UI) renderBadges(view *gocui.View) {
	view.Clear()
	fmt.Fprint(view, strings.Join(badgeLines(u.dashboard), "\n"))
}

func (u *UI) renderHistory(view *gocui.View, focused bool) {
	view.Clear()
	if u.historyNote != "" {
		fmt.Fprint(view, u.historyNote)
		return
	}
	for index, entry := range u.history {
		prefix := " "
		if index == u.selectedHistory {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s | %s | %s\n", prefix, entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.EventType, entry.Details)
	}
	if focused {
		view.SetCursor(0, min(u.selectedHistory, len(u.history)-1))
	}
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := opts.Y - y0 - 1 + oy
	if row < 0 {
		row = 0
	}

	switch viewName {
	case viewTasks:
		u.selectedTask = max(min(row, len(u.tasks)-1), 0)
		if err := u.loadHistory(); err != nil {
			return err
		}
		return u.setFocus(gui, viewTasks)
	case viewHistory:
		u.selectedHistory = max(min(row, len(u.history)-1), 0)
		return u.setFocus(gui, viewHistory)
	default:
		return nil
	}
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	views := []string{viewTasks, viewHistory, viewBadges, viewHeatmap}
	for _, name := range views {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) selectedTaskEntry() *model.Task {
	if u.selectedTask >= 0 && u.selectedTask < len(u.tasks) {
		return &u.tasks[u.selectedTask]
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}

	switch u.focus {
	case viewHeatmap:
		u.focus = viewTasks
	case viewTasks:
		u.focus = viewBadges
	case viewBadges:
		u.focus = viewHistory
	default:
		u.focus = viewHeatmap
	}
	u.focusCurrent(gui)
	return u.reload(gui, nil)
}

func (u *UI) focusHeatmap(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewHeatmap)
}

func (u *UI) focusTasks(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewTasks)
}

func (u *UI) focusBadges(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewBadges)
}

func (u *UI) focusHistory(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewHistory)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	u.focusCurrent(gui)
	return u.reload(gui, nil)
}

// focusCurrent hands keyboard focus back to the focused pane. Handlers run
// without a gui in tests, so a nil gui is a no-op.
func (u *UI) focusCurrent(gui *gocui.Gui) {
	if gui == nil {
		return
	}
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) closeOverlay(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	u.focusCurrent(gui)
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selectedTask < len(u.tasks)-1 {
			u.selectedTask++
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selectedTask > 0 {
			u.selectedTask--
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
	}
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) cycleFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.filter = u.filter.Next()
	u.selectedTask = 0
	return u.reload(gui, nil)
}

func (u *UI) refreshHistory(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.loadHistory()
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeOverlay(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewHelp, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) addTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{fields: buildFormFields(u.session.Today())}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 4
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewForm, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = "New Task"
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitFormNow(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}

	description, date, err := parseFormFields(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	if _, err := u.session.AddTask(context.Background(), description, date); err != nil {
		u.status = err.Error()
		return nil
	}

	u.form = nil
	u.status = ""
	u.closeOverlay(gui, viewForm)
	return u.load()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	editFormField(&ui.form.fields[ui.form.index], key, ch, mod)
	ui.renderForm(view)
	return true
}

func editFormField(field *formField, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}
}

func (u *UI) deleteTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewTasks {
		return nil
	}
	selected := u.selectedTaskEntry()
	if selected == nil {
		return nil
	}
	u.confirm = &confirmState{taskID: selected.ID, description: selected.Description}
	return nil
}

func (u *UI) showConfirm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewConfirm, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Delete Task"
		view.Wrap = true
		view.FrameColor = gocui.ColorRed
	}
	view.Clear()
	fmt.Fprintf(view, "Delete %q? (y/n)", u.confirm.description)
	_, _ = gui.SetCurrentView(viewConfirm)
	return nil
}

func (u *UI) confirmDelete(gui *gocui.Gui, _ *gocui.View) error {
	if u.confirm == nil {
		return nil
	}
	taskID := u.confirm.taskID
	u.confirm = nil
	u.closeOverlay(gui, viewConfirm)

	if err := u.session.DeleteTask(context.Background(), taskID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = "Task deleted"
	return u.load()
}

func (u *UI) cancelDelete(gui *gocui.Gui, _ *gocui.View) error {
	u.confirm = nil
	u.closeOverlay(gui, viewConfirm)
	return nil
}

func (u *UI) toggleDone(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewTasks {
		return nil
	}
	selected := u.selectedTaskEntry()
	if selected == nil {
		return nil
	}
	if _, err := u.session.ToggleStatus(context.Background(), *selected); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive || u.confirm != nil
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes",
		"  1 Activity | 2 Tasks | 3 Badges | 4 History",
		"  j/k or arrows move selection",
		"  mouse click to focus/select, wheel scrolls hovered pane",
		"",
		"Tasks:",
		"  a add task | x/space/enter toggle done | d delete (asks y/n)",
		"  f cycle filter (all/pending/completed)",
		"  enter save (form) | tab next field | esc cancel",
		"",
		"Heatmap:",
		"  · none  ░ 1-2  ▒ 3-5  ▓ 6-8  █ 9+",
		"",
		"Other:",
		"  h refresh history | r reload | ? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
