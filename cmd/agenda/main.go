// Command agenda é o cliente de terminal da agenda do studio: login,
// sincronização, visualização da grade, edição de agendamentos e caixa.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/agenda"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
)

const usage = `uso: agenda <comando> [flags]

comandos:
  login     autentica e guarda a sessão
  sync      baixa o bootstrap do studio (-force ignora a janela de 60s)
  view      mostra a grade (-view day|week|month|professional -date AAAA-MM-DD)
  new       cria agendamento ou bloqueio num horário
  status    muda o status de um agendamento
  delete    remove um agendamento
  checkout  fecha uma comanda com um ou mais pagamentos (-pay repetível)
`

// app concentra o que todo subcomando usa.
type app struct {
	out  io.Writer
	log  *logrus.Logger
	path string
	sess *session
	api  *agenda.Client
	now  func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(out, usage)
		return nil
	}

	log := logging.Discard()
	if lvl := os.Getenv("AGENDA_LOG_LEVEL"); lvl != "" {
		log = logging.New(lvl)
		log.SetOutput(os.Stderr)
	}

	path, err := sessionPath()
	if err != nil {
		return err
	}
	a := &app{out: out, log: log, path: path, now: time.Now}

	cmd, rest := args[0], args[1:]
	if cmd == "login" {
		return a.login(ctx, rest)
	}

	sess, err := loadSession(path)
	if err != nil {
		return err
	}
	a.sess = sess
	a.api = agenda.NewClient(sess.BaseURL, sess.Token)

	switch cmd {
	case "sync":
		return a.sync(ctx, rest)
	case "view":
		return a.view(ctx, rest)
	case "new":
		return a.create(ctx, rest)
	case "status":
		return a.status(ctx, rest)
	case "delete":
		return a.remove(ctx, rest)
	case "checkout":
		return a.checkout(ctx, rest)
	}

	fmt.Fprint(out, usage)
	return fmt.Errorf("comando desconhecido: %s", cmd)
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// describe traduz os erros remotos mais comuns para o operador.
func describe(err error) error {
	var re *agenda.RemoteError
	if errors.As(err, &re) {
		switch {
		case re.Status == 401:
			return fmt.Errorf("sessão expirada, rode `agenda login` de novo (%s)", re.Code)
		case re.IsConflict():
			return fmt.Errorf("conflito: %s", re.Error())
		}
	}
	return err
}
