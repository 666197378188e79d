package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/agenda"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/grid"
	"github.com/BruksfildServices01/studio-scheduler/internal/interaction"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/studio-scheduler/internal/usecase/appointment"
)

// ======================================================
// SESSION
// ======================================================

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	baseURL := fs.String("url", envOr("STUDIO_AGENDA_URL", "http://localhost:8080"), "endereço da API")
	email := fs.String("email", "", "e-mail do usuário")
	password := fs.String("password", os.Getenv("STUDIO_AGENDA_PASSWORD"), "senha")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("informe -email e -password")
	}

	client := agenda.NewClient(*baseURL, "")
	token, t, err := client.Login(ctx, *email, *password)
	if err != nil {
		return describe(err)
	}

	sess, err := loadSession(a.path)
	if err != nil {
		sess = &session{}
	}
	sess.BaseURL = *baseURL
	sess.Token = token
	sess.switchTenant(t)

	a.sess, a.api = sess, client
	if err := a.ensureBootstrap(ctx, true); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ logado no studio %s\n", sess.Bootstrap.Studio.Name)
	return nil
}

func (a *app) sync(ctx context.Context, args []string) error {
	fs := newFlags("sync")
	force := fs.Bool("force", false, "ignora a janela de sincronização")
	if err := fs.Parse(args); err != nil {
		return err
	}

	before := a.sess.LastSync
	if err := a.ensureBootstrap(ctx, *force); err != nil {
		return err
	}
	b := a.sess.Bootstrap
	if a.sess.LastSync.Equal(before) {
		fmt.Fprintf(a.out, "bootstrap local ainda válido (%s)\n", before.Format(time.RFC3339))
		return nil
	}
	fmt.Fprintf(a.out, "🔄 %s: %d profissionais, %d serviços, %d formas de pagamento\n",
		b.Studio.Name, len(b.Professionals), len(b.Services), len(b.PaymentMethods))
	return nil
}

// ensureBootstrap só vai ao servidor fora da janela local, ou com force.
func (a *app) ensureBootstrap(ctx context.Context, force bool) error {
	now := a.now()
	if !force && a.sess.fresh(now) {
		return nil
	}

	b, err := a.api.Bootstrap(ctx, a.sess.Tenant)
	if err != nil {
		return describe(err)
	}
	a.sess.Bootstrap = &b
	a.sess.LastSync = now
	return a.sess.save(a.path)
}

func (a *app) location() *time.Location {
	if a.sess.Bootstrap == nil {
		return timezone.Location("")
	}
	return timezone.Location(a.sess.Bootstrap.Studio.Timezone)
}

func (a *app) geometry() grid.Geometry {
	if a.sess.Bootstrap == nil {
		return grid.DefaultGeometry()
	}
	return ucAppointment.Geometry(&a.sess.Bootstrap.Studio)
}

func (a *app) coordinator() (*agenda.Coordinator, error) {
	return agenda.NewCoordinator(agenda.NewStore(), a.api, a.sess.Tenant, agenda.Options{
		Logger: a.log,
		OnError: func(op string, err error) {
			fmt.Fprintf(os.Stderr, "⚠️  %s: %v\n", op, describe(err))
		},
	})
}

// ======================================================
// VIEW
// ======================================================

func (a *app) view(ctx context.Context, args []string) error {
	fs := newFlags("view")
	viewName := fs.String("view", "day", "day, week, month ou professional")
	date := fs.String("date", "", "dia de referência (AAAA-MM-DD), hoje por padrão")
	profID := fs.Uint("professional", 0, "restringe a um profissional")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := grid.ParseView(*viewName)
	if err != nil {
		return err
	}
	if err := a.ensureBootstrap(ctx, false); err != nil {
		return err
	}
	ref, err := a.parseDate(*date)
	if err != nil {
		return err
	}

	coord, err := a.coordinator()
	if err != nil {
		return err
	}
	defer coord.Close()

	from, to := grid.Range(mode, ref)
	if err := coord.Fetch(ctx, from, to); err != nil {
		return describe(err)
	}

	items := coord.Store().Between(from, to)
	if *profID != 0 {
		items = filterProfessional(items, *profID)
	}

	cols := grid.Resolve(mode, ref, a.resources(*profID))
	newBoard(mode, a.geometry(), cols, items).render(a.out)
	return nil
}

func (a *app) resources(only uint) []grid.Resource {
	out := make([]grid.Resource, 0, len(a.sess.Bootstrap.Professionals))
	for _, p := range a.sess.Bootstrap.Professionals {
		if only != 0 && p.ID != only {
			continue
		}
		out = append(out, grid.Resource{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL, Role: p.Role})
	}
	return out
}

func filterProfessional(items []agenda.Appointment, id uint) []agenda.Appointment {
	out := items[:0:0]
	for _, it := range items {
		if it.ProfessionalID == id {
			out = append(out, it)
		}
	}
	return out
}

// ======================================================
// EDIT
// ======================================================

func (a *app) create(ctx context.Context, args []string) error {
	fs := newFlags("new")
	at := fs.String("at", "", "início (AAAA-MM-DDTHH:MM, horário do studio)")
	profID := fs.Uint("professional", 0, "profissional")
	clientID := fs.Uint("client", 0, "cliente")
	services := fs.String("services", "", "ids de serviço separados por vírgula")
	block := fs.Bool("block", false, "cria um bloqueio em vez de agendamento")
	minutes := fs.Int("minutes", 0, "duração do bloqueio em minutos")
	notes := fs.String("notes", "", "observações")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ensureBootstrap(ctx, false); err != nil {
		return err
	}
	start, err := time.ParseInLocation("2006-01-02T15:04", *at, a.location())
	if err != nil {
		return fmt.Errorf("-at inválido: %w", err)
	}
	serviceIDs, err := parseIDList(*services)
	if err != nil {
		return err
	}

	// o mesmo caminho da grade: clique no horário, escolha no menu, salvar
	g := a.geometry()
	m := interaction.NewMachine(interaction.DefaultSizes(), a.traceTransition)
	if !g.Snap(start).Equal(start) {
		return fmt.Errorf("-at %s fora da grade de %d minutos (mais próximo: %s)",
			start.Format("15:04"), g.SnapMinutes, g.Snap(start).Format("15:04"))
	}
	slotEnd := start.Add(time.Duration(g.SnapMinutes) * time.Minute)
	m.ClickSlot(start, *profID, grid.Rect{Y: g.PixelTop(start), W: cellWidth, H: g.PixelHeight(start, slotEnd)})
	kind := interaction.EditorAppointment
	if *block {
		kind = interaction.EditorBlock
	}
	if _, err := m.Choose(kind); err != nil {
		return err
	}
	st, err := m.Save()
	if err != nil {
		return err
	}

	ap := agenda.Appointment{
		ProfessionalID: st.ProfessionalID,
		StartTime:      st.Time,
		Notes:          *notes,
	}
	if st.Editor == interaction.EditorBlock {
		ap.Status = string(domain.StatusBlocked)
		if *minutes > 0 {
			ap.EndTime = st.Time.Add(time.Duration(*minutes) * time.Minute)
		}
	} else {
		ap.ServiceIDs = serviceIDs
		ap.ServiceDuration = a.serviceDuration(serviceIDs)
		if *clientID != 0 {
			id := *clientID
			ap.ClientID = &id
		}
	}

	coord, err := a.coordinator()
	if err != nil {
		return err
	}
	defer coord.Close()

	saved, err := coord.Create(ctx, ap)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(a.out, "✅ criado")
	renderList(a.out, []agenda.Appointment{saved}, a.location())
	return nil
}

func (a *app) serviceDuration(ids []uint) int {
	total := 0
	for _, id := range ids {
		for _, s := range a.sess.Bootstrap.Services {
			if s.ID == id {
				total += s.DurationMin
			}
		}
	}
	return total
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := newFlags("status")
	id := fs.Int64("id", 0, "agendamento")
	status := fs.String("status", "", "novo status")
	date := fs.String("date", "", "dia do agendamento (AAAA-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := domain.ParseStatus(*status)
	if err != nil {
		return err
	}

	return a.fromDetail(ctx, *id, *date, func(m *interaction.Machine) (interaction.Intent, error) {
		return m.ChangeStatus(st)
	})
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := newFlags("delete")
	id := fs.Int64("id", 0, "agendamento")
	date := fs.String("date", "", "dia do agendamento (AAAA-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.fromDetail(ctx, *id, *date, func(m *interaction.Machine) (interaction.Intent, error) {
		return m.Delete()
	})
}

// fromDetail carrega o dia, abre o detalhe do agendamento e executa a
// intenção devolvida pela máquina.
func (a *app) fromDetail(
	ctx context.Context,
	id int64,
	date string,
	act func(*interaction.Machine) (interaction.Intent, error),
) error {
	if id <= 0 {
		return errors.New("informe -id")
	}
	if err := a.ensureBootstrap(ctx, false); err != nil {
		return err
	}
	ref, err := a.parseDate(date)
	if err != nil {
		return err
	}

	coord, err := a.coordinator()
	if err != nil {
		return err
	}
	defer coord.Close()

	from, to := grid.Range(grid.ViewDay, ref)
	if err := coord.Fetch(ctx, from, to); err != nil {
		return describe(err)
	}
	current, ok := coord.Store().Get(id)
	if !ok {
		return fmt.Errorf("agendamento %d não encontrado em %s", id, ref.Format("02/01/2006"))
	}

	g := a.geometry()
	m := interaction.NewMachine(interaction.DefaultSizes(), a.traceTransition)
	anchor := grid.Rect{Y: g.PixelTop(current.StartTime), W: cellWidth, H: g.BoxHeight(current.StartTime, current.EndTime)}
	m.ClickAppointment(id, anchor)
	in, err := act(m)
	if err != nil {
		return err
	}

	if in.Delete {
		if err := coord.Delete(ctx, in.AppointmentID); err != nil {
			return describe(err)
		}
		fmt.Fprintf(a.out, "🗑️  agendamento %d removido\n", in.AppointmentID)
		return nil
	}

	saved, err := coord.SetStatus(ctx, in.AppointmentID, in.Status)
	if err != nil {
		return describe(err)
	}
	renderList(a.out, []agenda.Appointment{saved}, a.location())
	return nil
}

func (a *app) traceTransition(t interaction.Transition) {
	a.log.WithFields(logrus.Fields{
		"from": t.From.Mode,
		"to":   t.To.Mode,
	}).Debug("interaction")
}

// ======================================================
// CHECKOUT
// ======================================================

// payment é um -pay já interpretado. Amount zero significa "o restante".
type payment struct {
	MethodID     uint
	Amount       decimal.Decimal
	Installments int
}

type paymentList []payment

func (p *paymentList) String() string {
	parts := make([]string, 0, len(*p))
	for _, it := range *p {
		parts = append(parts, fmt.Sprintf("%d:%s:%d", it.MethodID, it.Amount.StringFixed(2), it.Installments))
	}
	return strings.Join(parts, ",")
}

func (p *paymentList) Set(v string) error {
	it, err := parsePayment(v)
	if err != nil {
		return err
	}
	*p = append(*p, it)
	return nil
}

// parsePayment aceita "metodo", "metodo:valor" e "metodo:valor:parcelas".
func parsePayment(v string) (payment, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) > 3 || parts[0] == "" {
		return payment{}, fmt.Errorf("pagamento inválido %q", v)
	}

	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || id == 0 {
		return payment{}, fmt.Errorf("forma de pagamento inválida %q", parts[0])
	}
	p := payment{MethodID: uint(id), Amount: decimal.Zero, Installments: 1}

	if len(parts) > 1 && parts[1] != "" {
		amount, err := decimal.NewFromString(strings.ReplaceAll(parts[1], ",", "."))
		if err != nil || !amount.IsPositive() {
			return payment{}, fmt.Errorf("valor inválido %q", parts[1])
		}
		p.Amount = amount
	}
	if len(parts) > 2 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return payment{}, fmt.Errorf("parcelas inválidas %q", parts[2])
		}
		p.Installments = n
	}
	return p, nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := newFlags("checkout")
	commandID := fs.Uint("command", 0, "comanda")
	var pays paymentList
	fs.Var(&pays, "pay", "metodo[:valor[:parcelas]] (repetível)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *commandID == 0 || len(pays) == 0 {
		return errors.New("informe -command e ao menos um -pay")
	}

	// formas de pagamento mudam pouco, mas a taxa precisa ser a atual
	if err := a.ensureBootstrap(ctx, false); err != nil {
		return err
	}

	cmd, err := a.api.GetCommand(ctx, a.sess.Tenant, *commandID)
	if err != nil {
		return describe(err)
	}

	table, bad := checkout.NewTable(a.sess.Bootstrap.PaymentMethods)
	for _, err := range bad {
		logging.LogError(a.log, "agenda", "checkout", "forma de pagamento ignorada", nil, err)
	}

	ledger := checkout.NewLedger(cmd.Total, table)
	for _, p := range pays {
		amount := p.Amount
		if amount.IsZero() {
			amount = ledger.SuggestedAmount()
		}
		if _, err := ledger.AddEntry(p.MethodID, amount, p.Installments); err != nil {
			return fmt.Errorf("pagamento %d: %w", p.MethodID, err)
		}
	}
	if !ledger.CanFinish() {
		return fmt.Errorf("faltam R$ %s para fechar a comanda", ledger.Remaining().StringFixed(2))
	}

	var result dto.FinishResultDTO
	err = ledger.Finish(ctx, checkout.FlushFunc(func(ctx context.Context, entries []checkout.Entry) error {
		body := dto.FinishCommandDTO{Entries: make([]dto.PaymentEntryDTO, 0, len(entries))}
		for _, e := range entries {
			body.Entries = append(body.Entries, dto.PaymentEntryDTO{
				MethodID:       e.MethodID,
				Amount:         e.Amount,
				Installments:   e.Installments,
				IdempotencyKey: e.IdempotencyKey,
			})
		}
		var err error
		result, err = a.api.FinishCommand(ctx, a.sess.Tenant, cmd.ID, body)
		return err
	}))
	if err != nil {
		return describe(err)
	}

	for _, e := range ledger.Entries() {
		fmt.Fprintf(a.out, "  %-16s R$ %10s  taxa R$ %8s  líquido R$ %10s\n",
			e.MethodName, e.Amount.StringFixed(2), e.FeeAmount.StringFixed(2), e.NetAmount.StringFixed(2))
	}
	fmt.Fprintf(a.out, "💰 comanda %d %s: bruto R$ %s, taxas R$ %s, líquido R$ %s\n",
		result.CommandID, result.Status,
		result.Gross.StringFixed(2), result.Fee.StringFixed(2), result.Net.StringFixed(2))
	return nil
}

// ======================================================
// HELPERS
// ======================================================

func (a *app) parseDate(s string) (time.Time, error) {
	loc := a.location()
	if s == "" {
		return a.now().In(loc), nil
	}
	d, err := timezone.ParseDate(s, loc.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("data inválida %q", s)
	}
	return d, nil
}

func parseIDList(s string) ([]uint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []uint
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("id inválido %q", part)
		}
		out = append(out, uint(id))
	}
	return out, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
