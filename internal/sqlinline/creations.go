package sqlinline

const QCreationInsert = `--sql 2b5f7aab-5b51-4ca6-b70a-def10a2f41cc
insert into creations (id, owner_id, app_id, app_name, status, thumbnail_ref, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8);
`

const QCreationByID = `--sql 93892458-040c-4aa8-9daf-e46415d9238b
select id, owner_id, app_id, app_name, status, thumbnail_ref, created_at, updated_at
from creations
where id = $1;
`

const QCreationByIDForUpdate = `--sql 85942fd9-f12b-44cf-a1b6-5a398faeb0f0
select id, owner_id, app_id, app_name, status, thumbnail_ref, created_at, updated_at
from creations
where id = $1
for update;
`

const QCreationUpdate = `--sql 3bf5cc4a-408a-42ba-ab4b-620027a5391d
update creations
set status = $2,
    thumbnail_ref = $3,
    updated_at = $4
where id = $1;
`

const QCreationsByOwner = `--sql 0572564f-d05d-4847-8389-8f91fe5cc81b
select id, owner_id, app_id, app_name, status, thumbnail_ref, created_at, updated_at
from creations
where owner_id = $1
order by updated_at desc, id desc
limit $2;
`

const QCreationAttemptsByCreations = `--sql eb0ae5b0-a70d-434d-ae60-ede2b0b780dd
select creation_id, job_id, outcome, attached_at, updated_at
from creation_attempts
where creation_id = any($1::text[])
order by attached_at asc, job_id asc;
`

const QCreationAttemptUpsert = `--sql e3d3c6b3-b4e2-44ae-b7ed-4aaba7aed0a1
insert into creation_attempts (creation_id, job_id, outcome, attached_at, updated_at)
values ($1, $2, $3, $4, $5)
on conflict (creation_id, job_id) do update set
    outcome = excluded.outcome,
    updated_at = excluded.updated_at;
`
