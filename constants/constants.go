package constants

var (
	VERSION = "0.3.0"

	USER_AGENT = "triage/" + VERSION

	// Security auditing event for an account that failed to log on.
	FAILED_LOGON_EVENT_ID = 4625

	// Environment variables consulted by the config loader.
	TRIAGE_CONFIG            = "TRIAGE_CONFIG"
	TRIAGE_ABUSEIPDB_KEY     = "TRIAGE_ABUSEIPDB_KEY"
	TRIAGE_VIRUSTOTAL_KEY    = "TRIAGE_VIRUSTOTAL_KEY"
	TRIAGE_OUTPUT_DIRECTORY  = "TRIAGE_OUTPUT_DIRECTORY"
	DEFAULT_WINDOWS_CASE_DIR = `C:\Cases`

	// Layout used for timestamps in the detail CSV.
	DETAIL_TIME_FORMAT = "2006-01-02 15:04:05"
	DATE_FORMAT        = "2006-01-02"
)
