package apply

// Candidate lists are tried in order; the first clickable or present entry wins.

// LinkedIn
var (
	linkedInHomeURL   = "https://www.linkedin.com/feed/"
	linkedInLoginURL  = "https://www.linkedin.com/login"
	linkedInAuthed    = ".global-nav__me-photo"
	linkedInUsername  = "#username"
	linkedInPassword  = "#password"
	linkedInLoginSend = "button[type='submit']"

	linkedInCookieCandidates  = []string{`[action-type="ACCEPT_COOKIES"]`, ".cookie-consent-accept"}
	linkedInDismissCandidates = []string{`[aria-label="Dismiss"]`, ".artdeco-modal__dismiss"}

	easyApplyCandidates = []string{
		".jobs-apply-button--top-card",
		`[data-control-name="easy_apply_button"]`,
		`button[aria-label*="Easy Apply"]`,
	}
	easyApplyFormCandidates   = []string{".jobs-easy-apply-modal form", "form"}
	easyApplySubmitCandidates = []string{`button[aria-label*="Submit"]`}

	externalApplyCandidates = []string{`[data-control-name="job_apply_button"]`}
	hopCandidates           = []string{
		`[type="submit"]`,
		`[aria-label*="apply"]`,
		`[class*="apply"]`,
		`[data-automation-id="applyNow"]`,
	}
	regularSubmitCandidates = []string{`[type="submit"]`, `[aria-label*="submit"]`}
)

// Workday
var workdaySite = atsSite{
	name:             "workday",
	applyCandidates:  []string{`[data-automation-id="applyNow"]`, `a[data-uxi-element-id*="Apply"]`},
	submitCandidates: []string{`[data-automation-id="bottom-navigation-next-button"]`, `button[type="submit"]`},
	loginEmail:       `[data-automation-id="email"]`,
	loginPassword:    `[data-automation-id="password"]`,
	loginSubmit:      `[data-automation-id="signInSubmitButton"]`,
}

// Taleo
var taleoSite = atsSite{
	name:             "taleo",
	applyCandidates:  []string{"#applyFromDetailBtn", `a[id*="applyFromDetail"]`},
	submitCandidates: []string{`[id*="saveContinueCmd"]`, `button[type="submit"]`},
	loginEmail:       "#dialogTemplate-dialogForm-login-name1",
	loginPassword:    "#dialogTemplate-dialogForm-login-password",
	loginSubmit:      "#dialogTemplate-dialogForm-login-defaultCmd",
}
