package store

import (
	"context"
	"fmt"
)

// Seed loads a small sample dataset through the regular store APIs so a
// fresh database has something to look at. Intended for development
// environments only; running it twice simply adds a second copy.
func Seed(ctx context.Context, users UsersStore, playbooks PlaybooksStore, incidents IncidentsStore) error {
	sampleUsers := []NewUser{
		{Name: "Alice Johnson", Email: "alice.johnson@company.com", Role: RoleIncidentCommander, Department: "Security Operations", IsActive: true},
		{Name: "Bob Smith", Email: "bob.smith@company.com", Role: RoleAnalyst, Department: "Threat Intelligence", IsActive: true},
		{Name: "Carol Williams", Email: "carol.williams@company.com", Role: RoleTechnicalLead, Department: "Infrastructure Security", IsActive: true},
		{Name: "David Brown", Email: "david.brown@company.com", Role: RoleAnalyst, Department: "Security Operations", IsActive: true},
	}
	userIDs := make([]string, 0, len(sampleUsers))
	for _, nu := range sampleUsers {
		u, err := users.Create(ctx, nu)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", nu.Email, err)
		}
		userIDs = append(userIDs, u.UID)
	}

	samplePlaybooks := []NewPlaybook{
		{Name: "Ransomware Response", Description: "Complete playbook for handling ransomware incidents", EstimatedDuration: "4-8 hours", IsActive: true},
		{Name: "Phishing Investigation", Description: "Standard procedure for investigating phishing campaigns", EstimatedDuration: "2-4 hours", IsActive: true},
		{Name: "Data Exfiltration Response", Description: "Playbook for responding to unauthorized data access and exfiltration", EstimatedDuration: "6-12 hours", IsActive: true},
	}
	playbookIDs := make([]string, 0, len(samplePlaybooks))
	for _, np := range samplePlaybooks {
		p, err := playbooks.Create(ctx, np)
		if err != nil {
			return fmt.Errorf("seed playbook %q: %w", np.Name, err)
		}
		playbookIDs = append(playbookIDs, p.UID)
	}

	type seedIncident struct {
		in   NewIncident
		refs []NewReference
	}
	sampleIncidents := []seedIncident{
		{
			in: NewIncident{
				Title:       "Suspected Ransomware on File Server",
				Description: "Multiple files encrypted on FS-01 file server. Ransom note detected.",
				Severity:    SeverityHigh,
				TLP:         TLPRed,
				Status:      StatusInProgress,
				AssignedTo:  userIDs[0],
				Playbook:    playbookIDs[0],
				Artifacts: []NewArtifact{
					{Value: "192.168.1.105", Type: ArtifactIP, Status: ArtifactMalicious, Kind: KindIOC, Notes: "C2 server communication detected"},
					{Value: "malicious-domain.evil", Type: ArtifactDomain, Status: ArtifactMalicious, Kind: KindIOC, Notes: "Used for payload download"},
					{Value: "a3d5f6e7c8b9a1d2e3f4g5h6i7j8k9l0", Type: ArtifactHash, Status: ArtifactMalicious, Kind: KindIOC, Notes: "SHA256 hash of ransomware executable"},
				},
			},
			refs: []NewReference{
				{Title: "Internal Ticket TICKET-2024-001", Link: "https://helpdesk.company.com/tickets/2024-001"},
				{Title: "Email Alert EMAIL-ALERT-456", Link: "https://mail.company.com/alerts/456"},
			},
		},
		{
			in: NewIncident{
				Title:       "Phishing Campaign Targeting HR Department",
				Description: "Multiple HR employees received suspicious emails claiming to be from payroll system.",
				Severity:    SeverityMedium,
				TLP:         TLPAmber,
				Status:      StatusOpen,
				AssignedTo:  userIDs[1],
				Playbook:    playbookIDs[1],
				Artifacts: []NewArtifact{
					{Value: "http://payroll-update-verify.com/login", Type: ArtifactURL, Status: ArtifactMalicious, Kind: KindIOC, Notes: "Credential harvesting page"},
					{Value: "sender@fake-company.com", Type: ArtifactDomain, Status: ArtifactMalicious, Kind: KindIOC, Notes: "Spoofed sender domain"},
				},
			},
			refs: []NewReference{
				{Title: "Ticketing System - TICKET-2024-002", Link: "https://helpdesk.company.com/tickets/2024-002"},
				{Title: "MITRE ATT&CK - Phishing Technique", Link: "https://attack.mitre.org/techniques/T1566/"},
			},
		},
		{
			in: NewIncident{
				Title:       "Unusual Data Access Pattern Detected",
				Description: "Employee account accessed sensitive customer database outside normal hours.",
				Severity:    SeverityHigh,
				TLP:         TLPAmber,
				Status:      StatusOpen,
				AssignedTo:  userIDs[2],
				Artifacts: []NewArtifact{
					{Value: "DB-SERVER-01", Type: ArtifactIP, Status: ArtifactClean, Kind: KindAsset, Notes: "Customer database server"},
					{Value: "10.0.5.45", Type: ArtifactIP, Status: ArtifactUnknown, Kind: KindIOC, Notes: "Source IP for unusual access"},
				},
			},
			refs: []NewReference{
				{Title: "SIEM Alert - SIEM-ALERT-789", Link: "https://siem.company.com/alerts/789"},
				{Title: "Data Access Policy Documentation", Link: "https://docs.company.com/security/data-access-policy"},
			},
		},
		{
			in: NewIncident{
				Title:       "Malware Detected on Workstation",
				Description: "Antivirus detected and quarantined malware on employee workstation.",
				Severity:    SeverityLow,
				TLP:         TLPGreen,
				Status:      StatusOpen,
				AssignedTo:  userIDs[3],
				Artifacts: []NewArtifact{
					{Value: "b4e6a7f8c9d0e1f2g3h4i5j6k7l8m9n0", Type: ArtifactHash, Status: ArtifactMalicious, Kind: KindIOC, Notes: "Known trojan variant"},
				},
			},
			refs: []NewReference{
				{Title: "Antivirus Alert - AV-ALERT-2024-123", Link: "https://av.company.com/alerts/2024-123"},
				{Title: "VirusTotal Analysis", Link: "https://virustotal.com/analysis/sample123"},
			},
		},
	}
	for _, si := range sampleIncidents {
		inc, err := incidents.Create(ctx, si.in)
		if err != nil {
			return fmt.Errorf("seed incident %q: %w", si.in.Title, err)
		}
		for _, ref := range si.refs {
			if _, err := incidents.AddReference(ctx, inc.UID, ref); err != nil {
				return fmt.Errorf("seed reference %q: %w", ref.Title, err)
			}
		}
	}

	// The last sample arrives Open and is resolved through Update so
	// closed_at gets stamped the same way it would in normal use.
	resolved := StatusResolved
	all, err := incidents.List(ctx)
	if err != nil {
		return err
	}
	for _, inc := range all {
		if inc.Title == "Malware Detected on Workstation" {
			if _, err := incidents.Update(ctx, inc.UID, IncidentPatch{Status: &resolved}); err != nil {
				return fmt.Errorf("seed resolve %q: %w", inc.Title, err)
			}
			break
		}
	}
	return nil
}
