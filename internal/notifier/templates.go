package notifier

import (
	"bytes"
	"html/template"

	"github.com/diewo77/jobboard/internal/events"
)

const (
	SubjectApplicationSubmitted = "✅ Application Submitted"
	SubjectNewApplication       = "📥 New Job Application Received"
	SubjectJobCreated           = "🎉 Job Created Successfully"
)

var (
	applicantTmpl = template.Must(template.New("applicant").Parse(`<h2>Hi {{.ApplicantName}},</h2>
<p>You have successfully applied to the job <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong>.</p>
<p>We wish you the best of luck!</p>
<br/>
<p>SkillBridge Team</p>
`))

	employerTmpl = template.Must(template.New("employer").Parse(`<h2>Hello {{.EmployerName}},</h2>
<p>You have received a new application for your job post: <strong>{{.JobTitle}}</strong>.</p>
<p><strong>Applicant Name:</strong> {{.ApplicantName}}</p>
<p><strong>Email:</strong> {{.ApplicantEmail}}</p>
<br/>
<p>SkillBridge Notifications</p>
`))

	jobCreatedTmpl = template.Must(template.New("job").Parse(`<h2>Hi {{.EmployerName}},</h2>
<p>Your job titled <strong>{{.Title}}</strong> has been posted successfully on SkillBridge.</p>
<p><strong>Company:</strong> {{.Company}}</p>
<p><strong>Location:</strong> {{.Location}}</p>
<p><strong>Type:</strong> {{.Type}}</p>
<p><strong>Description:</strong> {{.Description}}</p>
<br/>
<p>Thank you for using SkillBridge!</p>
`))
)

// ComposeApplication builds the mails for ev.Audience: the applicant
// confirmation, the employer alert, or both when no audience is set. The
// employer alert needs a known job owner.
func ComposeApplication(ev events.ApplicationSubmitted) ([]Message, error) {
	var msgs []Message
	if ev.Audience == "" || ev.Audience == events.AudienceApplicant {
		body, err := render(applicantTmpl, ev)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{To: ev.ApplicantEmail, Subject: SubjectApplicationSubmitted, HTML: body})
	}
	if (ev.Audience == "" || ev.Audience == events.AudienceEmployer) && ev.EmployerEmail != "" {
		body, err := render(employerTmpl, ev)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{To: ev.EmployerEmail, Subject: SubjectNewApplication, HTML: body})
	}
	return msgs, nil
}

// ComposeJobCreated builds the employer confirmation.
func ComposeJobCreated(ev events.JobCreated) (Message, error) {
	body, err := render(jobCreatedTmpl, ev)
	if err != nil {
		return Message{}, err
	}
	return Message{To: ev.EmployerEmail, Subject: SubjectJobCreated, HTML: body}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
