package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/vglug/intake-backend/infra/cloudrun"
	"github.com/vglug/intake-backend/infra/docker"
	"github.com/vglug/intake-backend/infra/firestore"
	"github.com/vglug/intake-backend/infra/identity"
	"github.com/vglug/intake-backend/infra/kms"
	"github.com/vglug/intake-backend/infra/provider"
	"github.com/vglug/intake-backend/infra/vertex"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service so admins can sign in with firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the project
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// enable kms and create the key that protects stored otp codes
		_, err = kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		otpKey, err := kms.CreateKey(ctx, prov, "intake", "otp-codes")
		if err != nil {
			return err
		}

		// enable vertex for the widget agent
		_, err = vertex.SetupVertex(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, otpKey, ident, repo)
		if err != nil {
			return err
		}

		return nil
	})
}
