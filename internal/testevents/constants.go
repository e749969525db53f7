package testevents

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ReloadPollInterval   = 500 * time.Millisecond
	ReloadWaitTimeout    = 2 * time.Minute
	PercentageMultiplier = 100
)

// Value pools for generated events.
var (
	regions = []string{
		"Amazonas", "Áncash", "Apurímac", "Arequipa", "Ayacucho", "Cajamarca",
		"Callao", "Cusco", "Huancavelica", "Huánuco", "Ica", "Junín",
		"La Libertad", "Lambayeque", "Lima", "Loreto", "Madre de Dios", "Moquegua",
		"Pasco", "Piura", "Puno", "San Martín", "Tacna", "Tumbes", "Ucayali",
	}
	institutions = []string{"UNI", "PUCP", "UNSAAC", "UNSA", "UNT", "Concytec", "IE Emblemática"}
	scopes       = []string{"Nacional", "Regional", "Local"}
	modalities   = []string{"Presencial", "Virtual", "Híbrido"}
	kinds        = []string{"Feria", "Encuentro", "Taller", "Hackatón", "Olimpiada"}
	months       = []string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	years = []int{2021, 2022, 2023, 2024}
)
