package corpus

import (
	"github.com/kailas-cloud/policysearch/internal/domain/policy"
)

func sampleRecords() []Record {
	return []Record{
		{
			ID:           "Contoso.Dummy:EnableDummy",
			RegistryPath: `HKLM\Software\Policies\Contoso\Dummy`,
			Texts: map[string]policy.Text{
				"en-US": {DisplayName: "Enable Dummy Feature", Description: "Turns on the dummy feature."},
				"ja-JP": {DisplayName: "ダミー機能を有効にする"},
			},
		},
		{
			ID:           "Contoso.Settings:HidePage",
			RegistryPath: `HKCU\Software\Policies\Contoso\SettingsPageVisibility`,
			Texts: map[string]policy.Text{
				"en-US": {DisplayName: "Policy settings page"},
			},
		},
	}
}
