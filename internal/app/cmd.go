package app

// Command representa o modo de inicialização da aplicação.
type Command string

const (
	// CommandServe inicia o servidor HTTP.
	CommandServe Command = "serve"
	// CommandWorker inicia o modo worker (limpeza de sessões expiradas).
	CommandWorker Command = "worker"
	// CommandMigrate aplica as migrações de banco pendentes.
	CommandMigrate Command = "migrate"
	// CommandHealthcheck executa o health check.
	// Usado pelo Docker em ambiente distroless.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand interpreta o subcomando da linha de comando.
// Sem argumentos ou com comando desconhecido, o padrão é serve.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "worker":
		return CommandWorker
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
